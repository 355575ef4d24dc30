package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a rule",
		Long:  "Delete a rule. Blocked notifications it matched stay in history with the rule's name.",
		Args:  cobra.ExactArgs(1),
		Run:   runRuleRm,
	}

	ruleCmd.AddCommand(cmd)
}

func runRuleRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := newAuthoring(s, zap.NewNop()).Delete(cmd.Context(), args[0]); err != nil {
		exitErr("rm", err)
	}
	fmt.Printf(`{"ok":true,"deleted":%q}`+"\n", args[0])
}

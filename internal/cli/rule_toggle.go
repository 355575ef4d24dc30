package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Switch a rule on or off",
		Args:  cobra.ExactArgs(1),
		Run:   runRuleToggle,
	}

	ruleCmd.AddCommand(cmd)
}

func runRuleToggle(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	r, err := newAuthoring(s, zap.NewNop()).Toggle(cmd.Context(), args[0])
	if err != nil {
		exitErr("toggle", err)
	}
	printJSON(r)
}

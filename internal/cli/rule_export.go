package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export rules as JSON",
		Run:   runRuleExport,
	}

	ruleCmd.AddCommand(cmd)
}

func runRuleExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rules, err := s.ExportRules(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}
	printJSON(rules)
}

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/buzzbuster/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Run:   runRuleList,
	}

	cmd.Flags().StringP("query", "q", "", "Only rules whose name or pattern contains this text")
	cmd.Flags().Bool("enabled", false, "Only enabled rules")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0 for all)")

	ruleCmd.AddCommand(cmd)
}

func runRuleList(cmd *cobra.Command, args []string) {
	query, _ := cmd.Flags().GetString("query")
	enabled, _ := cmd.Flags().GetBool("enabled")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rules, err := s.ListRules(cmd.Context(), store.ListRulesParams{
		Query:       query,
		EnabledOnly: enabled,
		Limit:       limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if textOutput() {
		writeRulesText(os.Stdout, rules)
		return
	}
	printJSON(rules)
}

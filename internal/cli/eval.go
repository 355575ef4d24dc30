package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/buzzbuster/internal/filter"
)

func init() {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Check whether a notification would be blocked",
		Long:  "Dry run of the enabled rules against a sample notification. Nothing is stored or cancelled.",
		Run:   runEval,
	}

	cmd.Flags().StringP("app", "a", "", "Source package name (required)")
	cmd.Flags().String("title", "", "Notification title")
	cmd.Flags().String("content", "", "Notification content")

	cmd.MarkFlagRequired("app")

	RootCmd.AddCommand(cmd)
}

func runEval(cmd *cobra.Command, args []string) {
	app, _ := cmd.Flags().GetString("app")
	title, _ := cmd.Flags().GetString("title")
	content, _ := cmd.Flags().GetString("content")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rules, err := s.ListEnabledRules(cmd.Context())
	if err != nil {
		exitErr("load rules", err)
	}

	printJSON(filter.Evaluate(rules, app, title, content))
}

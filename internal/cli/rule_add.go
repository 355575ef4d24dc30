package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/buzzbuster/internal/authoring"
	"github.com/rcliao/buzzbuster/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add [pattern]",
		Short: "Add a filter rule",
		Long: "Add a rule. The pattern can be a positional arg or piped via stdin.\n" +
			"String rules match a case-insensitive substring of title + content; regex rules match anywhere, case-insensitively.",
		Run: runRuleAdd,
	}

	cmd.Flags().StringP("name", "n", "", "Rule name (required)")
	cmd.Flags().StringP("type", "t", "string", "Rule type: string, regex")
	cmd.Flags().StringP("app", "a", "", "Only apply to this package (default: every app)")
	cmd.Flags().Bool("disabled", false, "Create the rule switched off")

	cmd.MarkFlagRequired("name")

	ruleCmd.AddCommand(cmd)
}

func runRuleAdd(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	typ, _ := cmd.Flags().GetString("type")
	app, _ := cmd.Flags().GetString("app")
	disabled, _ := cmd.Flags().GetBool("disabled")

	ft, err := model.ParseFilterType(typ)
	if err != nil {
		exitErr("add", err)
	}
	if ft == model.FilterAIGenerated {
		exitErr("add", fmt.Errorf("use 'rule generate' for AI rules"))
	}

	pattern, err := readContent(args)
	if err != nil {
		exitErr("read stdin", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	r, err := newAuthoring(s, zap.NewNop()).Create(cmd.Context(), authoring.CreateParams{
		Name:          name,
		FilterType:    ft,
		Pattern:       pattern,
		TargetPackage: app,
		Disabled:      disabled,
	})
	if err != nil {
		exitErr("add", err)
	}

	printJSON(r)
}

package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/buzzbuster/internal/authoring"
	"github.com/rcliao/buzzbuster/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a rule",
		Long:  "Change a rule. Only the flags given are updated. Pass --app \"\" to make the rule apply to every app.",
		Args:  cobra.ExactArgs(1),
		Run:   runRuleEdit,
	}

	cmd.Flags().StringP("name", "n", "", "New name")
	cmd.Flags().StringP("type", "t", "", "New type: string, regex")
	cmd.Flags().StringP("pattern", "p", "", "New pattern")
	cmd.Flags().StringP("app", "a", "", "New target package")

	ruleCmd.AddCommand(cmd)
}

func runRuleEdit(cmd *cobra.Command, args []string) {
	p := authoring.UpdateParams{ID: args[0]}
	flags := cmd.Flags()

	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		p.Name = &v
	}
	if flags.Changed("type") {
		v, _ := flags.GetString("type")
		ft, err := model.ParseFilterType(v)
		if err != nil {
			exitErr("edit", err)
		}
		p.FilterType = &ft
	}
	if flags.Changed("pattern") {
		v, _ := flags.GetString("pattern")
		p.Pattern = &v
	}
	if flags.Changed("app") {
		v, _ := flags.GetString("app")
		p.TargetPackage = &v
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	r, err := newAuthoring(s, zap.NewNop()).Update(cmd.Context(), p)
	if err != nil {
		exitErr("edit", err)
	}
	printJSON(r)
}

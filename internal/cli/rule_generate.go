package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/buzzbuster/internal/authoring"
	"github.com/rcliao/buzzbuster/internal/patterngen"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate [description]",
		Short: "Create a regex rule from a plain-language description",
		Long: "Describe which notifications to block and let the configured language model write the regex.\n" +
			"Requires an API key: buzzbuster settings set gemini_api_key <key>.",
		Run: runRuleGenerate,
	}

	cmd.Flags().StringP("name", "n", "", "Rule name (default: the description)")
	cmd.Flags().StringP("app", "a", "", "Only apply to this package")
	cmd.Flags().Bool("dry-run", false, "Print the pattern without saving a rule")
	cmd.Flags().Duration("timeout", 45*time.Second, "Give up after this long")

	ruleCmd.AddCommand(cmd)
}

func runRuleGenerate(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	app, _ := cmd.Flags().GetString("app")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	intent, err := readContent(args)
	if err != nil {
		exitErr("read stdin", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	svc := newAuthoring(s, zap.NewNop())
	if dryRun {
		pattern, err := svc.Suggest(ctx, intent)
		if err != nil {
			exitGenerate(err)
		}
		printJSON(map[string]string{"intent": intent, "pattern": pattern})
		return
	}

	r, err := svc.Generate(ctx, authoring.GenerateParams{
		Name:          name,
		Intent:        intent,
		TargetPackage: app,
	})
	if err != nil {
		exitGenerate(err)
	}
	printJSON(r)
}

func exitGenerate(err error) {
	if errors.Is(err, patterngen.ErrCredentialMissing) {
		exitErr("generate", fmt.Errorf("%w; set one with: buzzbuster settings set gemini_api_key <key>", err))
	}
	exitErr("generate", err)
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/buzzbuster/internal/filter"
	"github.com/rcliao/buzzbuster/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import rules from JSON",
		Long:  "Import rules from JSON on stdin. Expects the format produced by export. Imported rules get new ids.",
		Run:   runRuleImport,
	}

	ruleCmd.AddCommand(cmd)
}

func runRuleImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var rules []model.FilterRule
	if err := json.Unmarshal(data, &rules); err != nil {
		exitErr("parse json", err)
	}
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			exitErr("import", fmt.Errorf("rule %d: %w", i, err))
		}
		if err := filter.Validate(r.FilterType, r.Pattern); err != nil {
			exitErr("import", fmt.Errorf("rule %d: %w", i, err))
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.ImportRules(cmd.Context(), rules)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}

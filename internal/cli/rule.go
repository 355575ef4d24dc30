package cli

import (
	"github.com/spf13/cobra"
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage filter rules",
}

func init() {
	RootCmd.AddCommand(ruleCmd)
}

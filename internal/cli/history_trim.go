package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/buzzbuster/internal/retention"
)

func init() {
	cmd := &cobra.Command{
		Use:   "trim",
		Short: "Apply the history limit now",
		Long:  "Delete the oldest records beyond the history limit (settings history_limit, or --limit).",
		Run:   runHistoryTrim,
	}

	cmd.Flags().IntP("limit", "l", 0, "Keep this many records instead of the configured limit")

	historyCmd.AddCommand(cmd)
}

func runHistoryTrim(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if limit <= 0 {
		if limit, err = s.HistoryLimit(cmd.Context()); err != nil {
			exitErr("read history limit", err)
		}
	}

	n, err := retention.NewTrimmer(s, nil).Trim(cmd.Context(), limit)
	if err != nil {
		exitErr("trim", err)
	}
	fmt.Printf(`{"ok":true,"limit":%d,"deleted":%d}`+"\n", limit, n)
}

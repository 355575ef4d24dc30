package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/buzzbuster/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse, search and restore blocked notifications",
}

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blocked notifications, newest first",
		Run:   runHistoryList,
	}

	cmd.Flags().IntP("limit", "l", 50, "Max results (0 for all)")
	cmd.Flags().Duration("since", 0, "Only records newer than this, e.g. 24h")

	historyCmd.AddCommand(cmd)
	RootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	since, _ := cmd.Flags().GetDuration("since")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := store.ListHistoryParams{Limit: limit}
	if since > 0 {
		p.Since = time.Now().Add(-since)
	}
	records, err := s.ListBlocked(cmd.Context(), p)
	if err != nil {
		exitErr("list", err)
	}

	if textOutput() {
		writeHistoryText(os.Stdout, records, time.Now())
		return
	}
	printJSON(records)
}

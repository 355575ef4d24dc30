package cli

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/buzzbuster/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search blocked notifications",
		Long:  "Case-insensitive search over title, content, app name and package name.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runHistorySearch,
	}

	cmd.Flags().IntP("limit", "l", 50, "Max results (0 for all)")

	historyCmd.AddCommand(cmd)
}

func runHistorySearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	records, err := s.SearchBlocked(cmd.Context(), store.SearchParams{
		Query: strings.Join(args, " "),
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if textOutput() {
		writeHistoryText(os.Stdout, records, time.Now())
		return
	}
	printJSON(records)
}

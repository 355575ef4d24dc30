package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show rule and blocking statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath(), startOfDay(time.Now()))
	if err != nil {
		exitErr("stats", err)
	}

	if textOutput() {
		fmt.Printf("Rules:         %d (%d active)\n", stats.TotalRules, stats.ActiveRules)
		fmt.Printf("Blocked today: %d\n", stats.BlockedToday)
		fmt.Printf("Blocked total: %d (%d restored)\n", stats.TotalBlocked, stats.TotalRestored)
		for _, a := range stats.Apps {
			fmt.Printf("  %-24s %d\n", a.AppName, a.Count)
		}
		return
	}
	printJSON(stats)
}

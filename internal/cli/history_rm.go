package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete one blocked notification",
		Args:  cobra.ExactArgs(1),
		Run:   runHistoryRm,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history",
		Run:   runHistoryClear,
	}
	clearCmd.Flags().Bool("yes", false, "Confirm deleting every record")

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete history older than a given age",
		Run:   runHistoryPurge,
	}
	purgeCmd.Flags().Duration("older-than", 0, "Age cutoff, e.g. 720h (required)")
	purgeCmd.MarkFlagRequired("older-than")

	historyCmd.AddCommand(rmCmd, clearCmd, purgeCmd)
}

func runHistoryRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteBlockedByID(cmd.Context(), args[0]); err != nil {
		exitErr("rm", err)
	}
	fmt.Printf(`{"ok":true,"deleted":%q}`+"\n", args[0])
}

func runHistoryClear(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		exitErr("clear", fmt.Errorf("refusing to delete all history without --yes"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.DeleteAllBlocked(cmd.Context())
	if err != nil {
		exitErr("clear", err)
	}
	fmt.Printf(`{"ok":true,"deleted":%d}`+"\n", n)
}

func runHistoryPurge(cmd *cobra.Command, args []string) {
	age, _ := cmd.Flags().GetDuration("older-than")
	if age <= 0 {
		exitErr("purge", fmt.Errorf("--older-than must be positive"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.DeleteOlderThan(cmd.Context(), time.Now().Add(-age))
	if err != nil {
		exitErr("purge", err)
	}
	fmt.Printf(`{"ok":true,"deleted":%d}`+"\n", n)
}

package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Re-post a blocked notification",
		Long:  "Mark a record restored and queue a post command in the outbox the OS bridge reads.",
		Args:  cobra.ExactArgs(1),
		Run:   runHistoryRestore,
	}

	historyCmd.AddCommand(cmd)
}

func runHistoryRestore(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	svc, closeOutbox, err := newOutboxRestorer(s, newLogger())
	if err != nil {
		exitErr("open outbox", err)
	}
	defer closeOutbox()

	rec, err := svc.RestoreByID(cmd.Context(), args[0])
	if err != nil {
		exitErr("restore", err)
	}
	printJSON(rec)
}

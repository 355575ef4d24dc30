package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/rcliao/buzzbuster/internal/mcptools"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve history and rules over MCP (stdio)",
		Run:   runMCP,
	}

	RootCmd.AddCommand(cmd)
}

func runMCP(cmd *cobra.Command, args []string) {
	log := newLogger()
	defer log.Sync()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	restorer, closeOutbox, err := newOutboxRestorer(s, log)
	if err != nil {
		exitErr("open outbox", err)
	}
	defer closeOutbox()

	srv := mcptools.NewServer(Version, s, s, restorer)
	if err := server.ServeStdio(srv); err != nil {
		exitErr("mcp", err)
	}
}

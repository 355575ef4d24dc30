// Package mcptools exposes history and rules as MCP tools.
//
// Each tool is a struct with its dependencies injected via constructor,
// a Definition() returning the mcp.Tool schema and a Handle() method.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rcliao/buzzbuster/internal/model"
	"github.com/rcliao/buzzbuster/internal/store"
)

// HistoryReader searches stored history.
type HistoryReader interface {
	SearchBlocked(ctx context.Context, p store.SearchParams) ([]model.BlockedNotification, error)
}

// RuleReader lists rules.
type RuleReader interface {
	ListRules(ctx context.Context, p store.ListRulesParams) ([]model.FilterRule, error)
	ListEnabledRules(ctx context.Context) ([]model.FilterRule, error)
}

// Restorer restores a history record by id.
type Restorer interface {
	RestoreByID(ctx context.Context, id string) (*model.BlockedNotification, error)
}

// NewServer registers every tool on a new MCP server.
func NewServer(version string, history HistoryReader, rules RuleReader, restorer Restorer) *server.MCPServer {
	s := server.NewMCPServer(
		"buzzbuster",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	search := NewHistorySearchTool(history)
	s.AddTool(search.Definition(), search.Handle)

	restore := NewHistoryRestoreTool(restorer)
	s.AddTool(restore.Definition(), restore.Handle)

	list := NewRulesListTool(rules)
	s.AddTool(list.Definition(), list.Handle)

	test := NewNotificationTestTool(rules)
	s.AddTool(test.Definition(), test.Handle)

	return s
}

// intArg extracts an integer argument, returning defaultVal if the key is
// missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func writeRecord(b *strings.Builder, i int, n model.BlockedNotification) {
	rule := n.MatchedRuleName
	if rule == "" {
		rule = "-"
	}
	restored := ""
	if n.IsRestored {
		restored = " (restored)"
	}
	fmt.Fprintf(b, "[%d] %s %s | %s%s\n    %s: %s\n    rule: %s (%s) | %s\n\n",
		i+1, n.ID, n.BlockedAt.Local().Format("2006-01-02 15:04"), n.AppName, restored,
		n.Title, truncate(n.Content, 200),
		rule, n.MatchType, n.PackageName)
}

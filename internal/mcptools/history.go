package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rcliao/buzzbuster/internal/store"
)

// HistorySearchTool handles the history_search MCP tool.
type HistorySearchTool struct {
	history HistoryReader
}

// NewHistorySearchTool creates a HistorySearchTool.
func NewHistorySearchTool(history HistoryReader) *HistorySearchTool {
	return &HistorySearchTool{history: history}
}

// Definition returns the MCP tool definition for history_search.
func (t *HistorySearchTool) Definition() mcp.Tool {
	return mcp.NewTool("history_search",
		mcp.WithDescription(
			"Search notifications that buzzbuster blocked. Matches title, content, app name "+
				"and package name, ignoring case. Newest first. An empty query lists recent records.",
		),
		mcp.WithString("query",
			mcp.Description("Text to look for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 20, max: 100)"),
		),
	)
}

// Handle processes the history_search tool call.
func (t *HistorySearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	limit := intArg(req, "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	results, err := t.history.SearchBlocked(ctx, store.SearchParams{Query: query, Limit: limit})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No blocked notifications found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d blocked notifications:\n\n", len(results))
	for i, n := range results {
		writeRecord(&b, i, n)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// HistoryRestoreTool handles the history_restore MCP tool.
type HistoryRestoreTool struct {
	restorer Restorer
}

// NewHistoryRestoreTool creates a HistoryRestoreTool.
func NewHistoryRestoreTool(restorer Restorer) *HistoryRestoreTool {
	return &HistoryRestoreTool{restorer: restorer}
}

// Definition returns the MCP tool definition for history_restore.
func (t *HistoryRestoreTool) Definition() mcp.Tool {
	return mcp.NewTool("history_restore",
		mcp.WithDescription("Re-post a blocked notification so the user can see it again."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record id from history_search"),
		),
	)
}

// Handle processes the history_restore tool call.
func (t *HistoryRestoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	rec, err := t.restorer.RestoreByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no blocked notification with id %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("restore failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Restored %q from %s.", rec.Title, rec.AppName)), nil
}

package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rcliao/buzzbuster/internal/filter"
	"github.com/rcliao/buzzbuster/internal/store"
)

// RulesListTool handles the rules_list MCP tool.
type RulesListTool struct {
	rules RuleReader
}

// NewRulesListTool creates a RulesListTool.
func NewRulesListTool(rules RuleReader) *RulesListTool {
	return &RulesListTool{rules: rules}
}

// Definition returns the MCP tool definition for rules_list.
func (t *RulesListTool) Definition() mcp.Tool {
	return mcp.NewTool("rules_list",
		mcp.WithDescription("List filter rules in evaluation order, most recently changed first."),
		mcp.WithString("query",
			mcp.Description("Only rules whose name or pattern contains this text"),
		),
		mcp.WithBoolean("enabled_only",
			mcp.Description("Skip disabled rules (default: false)"),
		),
	)
}

// Handle processes the rules_list tool call.
func (t *RulesListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules, err := t.rules.ListRules(ctx, store.ListRulesParams{
		Query:       req.GetString("query", ""),
		EnabledOnly: boolArg(req, "enabled_only", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if len(rules) == 0 {
		return mcp.NewToolResultText("No rules."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d rules:\n\n", len(rules))
	for i, r := range rules {
		state := "on"
		if !r.IsEnabled {
			state = "off"
		}
		target := "all apps"
		if r.TargetPackage != nil {
			target = *r.TargetPackage
		}
		fmt.Fprintf(&b, "[%d] %s %q [%s] %s: %s | %s\n", i+1, r.ID, r.Name, state, r.FilterType, r.Pattern, target)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// NotificationTestTool handles the notification_test MCP tool: a dry run of
// the enabled rules against a sample notification.
type NotificationTestTool struct {
	rules RuleReader
}

// NewNotificationTestTool creates a NotificationTestTool.
func NewNotificationTestTool(rules RuleReader) *NotificationTestTool {
	return &NotificationTestTool{rules: rules}
}

// Definition returns the MCP tool definition for notification_test.
func (t *NotificationTestTool) Definition() mcp.Tool {
	return mcp.NewTool("notification_test",
		mcp.WithDescription("Check whether a notification would be blocked by the current rules. Nothing is stored."),
		mcp.WithString("package",
			mcp.Required(),
			mcp.Description("Source app package name, e.g. com.shop"),
		),
		mcp.WithString("title",
			mcp.Description("Notification title"),
		),
		mcp.WithString("content",
			mcp.Description("Notification body"),
		),
	)
}

// Handle processes the notification_test tool call.
func (t *NotificationTestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pkg := req.GetString("package", "")
	if pkg == "" {
		return mcp.NewToolResultError("'package' is required"), nil
	}

	rules, err := t.rules.ListEnabledRules(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load rules: %v", err)), nil
	}

	res := filter.Evaluate(rules, pkg, req.GetString("title", ""), req.GetString("content", ""))
	if !res.Matched {
		return mcp.NewToolResultText("Not blocked: no enabled rule matches."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Blocked by rule %q (%s, %s: %s).",
		res.Rule.Name, res.Rule.ID, res.MatchType, res.Rule.Pattern)), nil
}

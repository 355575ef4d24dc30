package model

import "time"

// MatchType records which tier suppressed a notification.
type MatchType string

const (
	MatchStringMatch MatchType = "STRING_MATCH"
	MatchRegex       MatchType = "REGEX"
	MatchAIGenerated MatchType = "AI_GENERATED"
)

// BlockedNotification is the history record of one suppressed notification.
// Only IsRestored ever changes after insert, and only from false to true.
type BlockedNotification struct {
	ID              string    `json:"id"`
	PackageName     string    `json:"package_name"`
	AppName         string    `json:"app_name"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	MatchedRuleID   *string   `json:"matched_rule_id,omitempty"` // lookup only; cleared when the rule is deleted
	MatchedRuleName string    `json:"matched_rule_name,omitempty"`
	MatchType       MatchType `json:"match_type,omitempty"`
	BlockedAt       time.Time `json:"blocked_at"`
	IsRestored      bool      `json:"is_restored"`
}

// PostedNotification is an inbound event from the OS layer.
type PostedNotification struct {
	PackageName string `json:"package_name"`
	AppName     string `json:"app_name,omitempty"`
	Title       string `json:"title,omitempty"`
	Content     string `json:"content,omitempty"`
	IsOngoing   bool   `json:"is_ongoing,omitempty"`
	DeliveryKey string `json:"key"`
}

// DisplayName is the app label, falling back to the package name.
func (n PostedNotification) DisplayName() string {
	if n.AppName != "" {
		return n.AppName
	}
	return n.PackageName
}

// CancelNotification withdraws a posted notification from view.
type CancelNotification struct {
	DeliveryKey string `json:"key"`
}

// PostNotification asks the OS layer to show a notification.
type PostNotification struct {
	Channel string `json:"channel"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Subtext string `json:"subtext,omitempty"`
}

// Package store provides rule, history and settings storage backed by SQLite.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/buzzbuster/internal/model"
)

// ErrNotFound is returned (wrapped) when a rule or record does not exist.
var ErrNotFound = errors.New("not found")

// ListRulesParams holds parameters for listing rules.
type ListRulesParams struct {
	Query       string // substring of name or pattern
	EnabledOnly bool
	Limit       int // 0 means no limit
}

// ListHistoryParams holds parameters for listing history records.
type ListHistoryParams struct {
	Since time.Time // zero means unbounded
	Until time.Time // zero means unbounded
	Limit int       // 0 means no limit
}

// SearchParams holds parameters for searching history.
type SearchParams struct {
	Query string
	Limit int
}

// RuleStore is the durable store of filter rules.
type RuleStore interface {
	// ListEnabledRules returns enabled rules ordered by updated_at desc, id asc.
	ListEnabledRules(ctx context.Context) ([]model.FilterRule, error)

	ListRules(ctx context.Context, p ListRulesParams) ([]model.FilterRule, error)
	GetRule(ctx context.Context, id string) (*model.FilterRule, error)

	// InsertRule assigns the id and timestamps and returns the stored rule.
	InsertRule(ctx context.Context, r model.FilterRule) (*model.FilterRule, error)

	// UpdateRule rewrites every mutable field and refreshes updated_at.
	UpdateRule(ctx context.Context, r model.FilterRule) (*model.FilterRule, error)

	SetRuleEnabled(ctx context.Context, id string, enabled bool) (*model.FilterRule, error)
	DeleteRule(ctx context.Context, r model.FilterRule) error
	DeleteRuleByID(ctx context.Context, id string) error
}

// HistoryStore holds suppressed-notification records.
type HistoryStore interface {
	// InsertBlocked stores a new record and returns its id.
	InsertBlocked(ctx context.Context, n model.BlockedNotification) (string, error)

	GetBlocked(ctx context.Context, id string) (*model.BlockedNotification, error)
	ListBlocked(ctx context.Context, p ListHistoryParams) ([]model.BlockedNotification, error)
	SearchBlocked(ctx context.Context, p SearchParams) ([]model.BlockedNotification, error)

	// MarkRestored sets is_restored. Repeated calls are no-ops.
	MarkRestored(ctx context.Context, id string) error

	DeleteBlocked(ctx context.Context, n model.BlockedNotification) error
	DeleteBlockedByID(ctx context.Context, id string) error
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	DeleteAllBlocked(ctx context.Context) (int64, error)

	// TrimToLimit keeps only the n most recent records.
	TrimToLimit(ctx context.Context, n int) (int64, error)

	CountBlocked(ctx context.Context) (int, error)
	CountBlockedSince(ctx context.Context, since time.Time) (int, error)
}

// SettingsStore holds user preferences.
type SettingsStore interface {
	Settings(ctx context.Context) (model.Settings, error)
	InterceptorEnabled(ctx context.Context) (bool, error)
	HistoryLimit(ctx context.Context) (int, error)
	GeminiAPIKey(ctx context.Context) (string, error)

	SetInterceptorEnabled(ctx context.Context, enabled bool) error
	SetHistoryLimit(ctx context.Context, limit int) error
	SetGeminiAPIKey(ctx context.Context, key string) error
	SetThemeMode(ctx context.Context, mode string) error
	SetAutoWipeEnabled(ctx context.Context, enabled bool) error
	ResetSettings(ctx context.Context) error
}

// Store is everything the SQLite implementation provides.
type Store interface {
	RuleStore
	HistoryStore
	SettingsStore

	// Close closes the store.
	Close() error
}

package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/buzzbuster/internal/model"
)

// timeLayout is fixed width so text order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// newID is called from concurrent pipeline workers, so the entropy source is guarded.
func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS filter_rules (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		filter_type     TEXT NOT NULL,
		pattern         TEXT NOT NULL,
		target_package  TEXT,
		is_enabled      INTEGER NOT NULL DEFAULT 1,
		original_prompt TEXT,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rules_enabled ON filter_rules(is_enabled, updated_at DESC);

	CREATE TABLE IF NOT EXISTS blocked_notifications (
		id                TEXT PRIMARY KEY,
		package_name      TEXT NOT NULL,
		app_name          TEXT NOT NULL,
		title             TEXT NOT NULL DEFAULT '',
		content           TEXT NOT NULL DEFAULT '',
		matched_rule_id   TEXT REFERENCES filter_rules(id) ON DELETE SET NULL,
		matched_rule_name TEXT,
		match_type        TEXT,
		blocked_at        TEXT NOT NULL,
		is_restored       INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_blocked_rule ON blocked_notifications(matched_rule_id);
	CREATE INDEX IF NOT EXISTS idx_blocked_at ON blocked_notifications(blocked_at DESC, id DESC);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

const ruleColumns = `id, name, filter_type, pattern, target_package, is_enabled, original_prompt, created_at, updated_at`

func scanRule(row scanner) (model.FilterRule, error) {
	var r model.FilterRule
	var target, prompt sql.NullString
	var filterType, createdAt, updatedAt string

	err := row.Scan(&r.ID, &r.Name, &filterType, &r.Pattern, &target,
		&r.IsEnabled, &prompt, &createdAt, &updatedAt)
	if err != nil {
		return r, err
	}

	r.FilterType = model.FilterType(filterType)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	if target.Valid {
		r.TargetPackage = &target.String
	}
	if prompt.Valid {
		r.OriginalPrompt = &prompt.String
	}
	return r, nil
}

const blockedColumns = `id, package_name, app_name, title, content, matched_rule_id, matched_rule_name, match_type, blocked_at, is_restored`

func scanBlocked(row scanner) (model.BlockedNotification, error) {
	var n model.BlockedNotification
	var ruleID, ruleName, matchType sql.NullString
	var blockedAt string

	err := row.Scan(&n.ID, &n.PackageName, &n.AppName, &n.Title, &n.Content,
		&ruleID, &ruleName, &matchType, &blockedAt, &n.IsRestored)
	if err != nil {
		return n, err
	}

	n.BlockedAt = parseTime(blockedAt)
	if ruleID.Valid {
		n.MatchedRuleID = &ruleID.String
	}
	if ruleName.Valid {
		n.MatchedRuleName = ruleName.String
	}
	if matchType.Valid {
		n.MatchType = model.MatchType(matchType.String)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func nullable(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

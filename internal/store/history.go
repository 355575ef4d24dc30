package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/buzzbuster/internal/model"
)

func (s *SQLiteStore) InsertBlocked(ctx context.Context, n model.BlockedNotification) (string, error) {
	if n.BlockedAt.IsZero() {
		n.BlockedAt = time.Now()
	}
	if n.AppName == "" {
		n.AppName = n.PackageName
	}
	id := s.newID(n.BlockedAt)

	var matchType interface{}
	if n.MatchType != "" {
		matchType = string(n.MatchType)
	}
	var ruleName interface{}
	if n.MatchedRuleName != "" {
		ruleName = n.MatchedRuleName
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blocked_notifications (`+blockedColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		id, n.PackageName, n.AppName, n.Title, n.Content,
		nullable(n.MatchedRuleID), ruleName, matchType, formatTime(n.BlockedAt))
	if err != nil {
		return "", fmt.Errorf("insert blocked notification: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetBlocked(ctx context.Context, id string) (*model.BlockedNotification, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blockedColumns+` FROM blocked_notifications WHERE id = ?`, id)
	n, err := scanBlocked(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListBlocked returns records newest first.
func (s *SQLiteStore) ListBlocked(ctx context.Context, p ListHistoryParams) ([]model.BlockedNotification, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}

	if !p.Since.IsZero() {
		where = append(where, "blocked_at >= ?")
		args = append(args, formatTime(p.Since))
	}
	if !p.Until.IsZero() {
		where = append(where, "blocked_at <= ?")
		args = append(args, formatTime(p.Until))
	}

	return s.queryBlocked(ctx, strings.Join(where, " AND "), args, p.Limit)
}

// SearchBlocked finds records whose title, content, app name or package name
// contain the query, ignoring case.
func (s *SQLiteStore) SearchBlocked(ctx context.Context, p SearchParams) ([]model.BlockedNotification, error) {
	if strings.TrimSpace(p.Query) == "" {
		return s.ListBlocked(ctx, ListHistoryParams{Limit: p.Limit})
	}

	q := likePattern(p.Query)
	where := `(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\'
		OR app_name LIKE ? ESCAPE '\' OR package_name LIKE ? ESCAPE '\')`
	return s.queryBlocked(ctx, where, []interface{}{q, q, q, q}, p.Limit)
}

func (s *SQLiteStore) queryBlocked(ctx context.Context, where string, args []interface{}, limit int) ([]model.BlockedNotification, error) {
	query := fmt.Sprintf(`SELECT %s FROM blocked_notifications WHERE %s ORDER BY blocked_at DESC, id DESC`,
		blockedColumns, where)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BlockedNotification
	for rows.Next() {
		n, err := scanBlocked(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MarkRestored(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE blocked_notifications SET is_restored = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark restored: %w", err)
	}
	return requireRow(res, "notification", id)
}

func (s *SQLiteStore) DeleteBlocked(ctx context.Context, n model.BlockedNotification) error {
	return s.DeleteBlockedByID(ctx, n.ID)
}

func (s *SQLiteStore) DeleteBlockedByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocked_notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return requireRow(res, "notification", id)
}

func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocked_notifications WHERE blocked_at < ?`, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("delete older than: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) DeleteAllBlocked(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocked_notifications`)
	if err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}
	return res.RowsAffected()
}

// TrimToLimit deletes everything outside the n most recent records. The cutoff
// is computed inside the same statement, so a record inserted before the
// statement runs counts as recent.
func (s *SQLiteStore) TrimToLimit(ctx context.Context, n int) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("trim: negative limit %d", n)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM blocked_notifications WHERE id NOT IN (
			SELECT id FROM blocked_notifications ORDER BY blocked_at DESC, id DESC LIMIT ?
		)`, n)
	if err != nil {
		return 0, fmt.Errorf("trim: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) CountBlocked(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocked_notifications`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) CountBlockedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blocked_notifications WHERE blocked_at >= ?`, formatTime(since)).Scan(&n)
	return n, err
}

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

// ListEnabledRules returns every enabled rule regardless of target package.
// Ties on updated_at fall back to id ascending so the order is stable.
func (s *SQLiteStore) ListEnabledRules(ctx context.Context) ([]model.FilterRule, error) {
	return s.ListRules(ctx, ListRulesParams{EnabledOnly: true})
}

func (s *SQLiteStore) ListRules(ctx context.Context, p ListRulesParams) ([]model.FilterRule, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}

	if p.EnabledOnly {
		where = append(where, "is_enabled = 1")
	}
	if p.Query != "" {
		q := likePattern(p.Query)
		where = append(where, `(name LIKE ? ESCAPE '\' OR pattern LIKE ? ESCAPE '\')`)
		args = append(args, q, q)
	}

	query := fmt.Sprintf(`SELECT %s FROM filter_rules WHERE %s ORDER BY updated_at DESC, id ASC`,
		ruleColumns, strings.Join(where, " AND "))
	if p.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, p.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []model.FilterRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *SQLiteStore) GetRule(ctx context.Context, id string) (*model.FilterRule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM filter_rules WHERE id = ?`, id)
	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) InsertRule(ctx context.Context, r model.FilterRule) (*model.FilterRule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r.ID = s.newID(now)
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.FilterType != model.FilterAIGenerated {
		r.OriginalPrompt = nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO filter_rules (`+ruleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, string(r.FilterType), r.Pattern, nullable(r.TargetPackage),
		r.IsEnabled, nullable(r.OriginalPrompt), formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert rule: %w", err)
	}
	return &r, nil
}

func (s *SQLiteStore) UpdateRule(ctx context.Context, r model.FilterRule) (*model.FilterRule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.FilterType != model.FilterAIGenerated {
		r.OriginalPrompt = nil
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE filter_rules
		 SET name = ?, filter_type = ?, pattern = ?, target_package = ?, is_enabled = ?,
		     original_prompt = ?, updated_at = ?
		 WHERE id = ?`,
		r.Name, string(r.FilterType), r.Pattern, nullable(r.TargetPackage), r.IsEnabled,
		nullable(r.OriginalPrompt), formatTime(now), r.ID)
	if err != nil {
		return nil, fmt.Errorf("update rule: %w", err)
	}
	if err := requireRow(res, "rule", r.ID); err != nil {
		return nil, err
	}
	return s.GetRule(ctx, r.ID)
}

func (s *SQLiteStore) SetRuleEnabled(ctx context.Context, id string, enabled bool) (*model.FilterRule, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE filter_rules SET is_enabled = ?, updated_at = ? WHERE id = ?`,
		enabled, formatTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("toggle rule: %w", err)
	}
	if err := requireRow(res, "rule", id); err != nil {
		return nil, err
	}
	return s.GetRule(ctx, id)
}

func (s *SQLiteStore) DeleteRule(ctx context.Context, r model.FilterRule) error {
	return s.DeleteRuleByID(ctx, r.ID)
}

// DeleteRuleByID removes a rule. History records keep their snapshot name;
// their matched_rule_id is cleared by the foreign key.
func (s *SQLiteStore) DeleteRuleByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM filter_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return requireRow(res, "rule", id)
}

// RuleCounts returns the total and enabled rule counts.
func (s *SQLiteStore) RuleCounts(ctx context.Context) (total, active int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_enabled), 0) FROM filter_rules`).Scan(&total, &active)
	return total, active, err
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// likePattern escapes LIKE wildcards in q and wraps it for substring matching.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

package store

import (
	"context"

	"github.com/rcliao/buzzbuster/internal/model"
)

// ExportRules returns every rule, oldest first.
func (s *SQLiteStore) ExportRules(ctx context.Context) ([]model.FilterRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM filter_rules ORDER BY created_at ASC, id ASC`)
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

// ImportRules stores rules from an export. Each gets a fresh id and timestamps.
func (s *SQLiteStore) ImportRules(ctx context.Context, rules []model.FilterRule) (int, error) {
	imported := 0
	for _, r := range rules {
		if _, err := s.InsertRule(ctx, r); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

package store

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string     `json:"db_path"`
	DBSizeBytes   int64      `json:"db_size_bytes"`
	TotalRules    int        `json:"total_rules"`
	ActiveRules   int        `json:"active_rules"`
	TotalBlocked  int        `json:"total_blocked"`
	BlockedToday  int        `json:"blocked_today"`
	TotalRestored int        `json:"total_restored"`
	Apps          []AppStats `json:"apps"`
}

// AppStats holds per-app blocked counts.
type AppStats struct {
	PackageName string `json:"package_name"`
	AppName     string `json:"app_name"`
	Count       int    `json:"count"`
}

// Stats returns database statistics. dayStart is the start of "today" in the
// caller's time zone.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string, dayStart time.Time) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	var err error
	if st.TotalRules, st.ActiveRules, err = s.RuleCounts(ctx); err != nil {
		return st, err
	}
	if st.TotalBlocked, err = s.CountBlocked(ctx); err != nil {
		return st, err
	}
	if st.BlockedToday, err = s.CountBlockedSince(ctx, dayStart); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocked_notifications WHERE is_restored = 1`).Scan(&st.TotalRestored); err != nil {
		return st, fmt.Errorf("count restored: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT package_name, MAX(app_name), COUNT(*) AS cnt
		FROM blocked_notifications
		GROUP BY package_name ORDER BY cnt DESC, package_name ASC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var a AppStats
		if err := rows.Scan(&a.PackageName, &a.AppName, &a.Count); err != nil {
			return st, fmt.Errorf("scan app stats: %w", err)
		}
		st.Apps = append(st.Apps, a)
	}
	return st, rows.Err()
}

package housekeeping

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/buzzbuster/internal/model"
	"github.com/rcliao/buzzbuster/internal/retention"
	"github.com/rcliao/buzzbuster/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunOnce_ExpiresAndTrims(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	for i, age := range []time.Duration{72 * time.Hour, 30 * time.Hour, 3 * time.Hour, 2 * time.Hour, time.Hour} {
		_, err := s.InsertBlocked(ctx, model.BlockedNotification{
			PackageName: "com.app",
			Title:       string(rune('a' + i)),
			BlockedAt:   now.Add(-age),
		})
		require.NoError(t, err)
	}
	require.NoError(t, s.SetHistoryLimit(ctx, 2))

	p, err := NewPurger(s, s, retention.NewTrimmer(s, nil), Config{MaxAge: 24 * time.Hour}, nil)
	require.NoError(t, err)
	p.now = func() time.Time { return now }

	res, err := p.RunOnce(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Expired)
	assert.EqualValues(t, 1, res.Trimmed)

	left, err := s.ListBlocked(ctx, store.ListHistoryParams{})
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "e", left[0].Title)
	assert.Equal(t, "d", left[1].Title)
}

func TestRunOnce_ZeroMaxAgeOnlyTrims(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.InsertBlocked(ctx, model.BlockedNotification{
		PackageName: "com.app",
		BlockedAt:   time.Now().Add(-1000 * time.Hour),
	})
	require.NoError(t, err)

	p, err := NewPurger(s, s, retention.NewTrimmer(s, nil), Config{}, nil)
	require.NoError(t, err)

	res, err := p.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Expired)
	assert.Zero(t, res.Trimmed)
}

func TestNewPurger_BadSpec(t *testing.T) {
	_, err := NewPurger(newTestStore(t), nil, nil, Config{Spec: "every now and then"}, nil)
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	p, err := NewPurger(newTestStore(t), nil, nil, Config{Spec: "@every 1h"}, nil)
	require.NoError(t, err)
	p.Start()
	p.Stop()
}

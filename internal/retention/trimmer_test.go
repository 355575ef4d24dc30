package retention

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/buzzbuster/internal/model"
	"github.com/rcliao/buzzbuster/internal/store"
)

type fakeStore struct {
	limits []int
	err    error
}

func (f *fakeStore) TrimToLimit(_ context.Context, n int) (int64, error) {
	f.limits = append(f.limits, n)
	return 0, f.err
}

func TestTrim_DefaultsNonPositiveLimit(t *testing.T) {
	f := &fakeStore{}
	tr := NewTrimmer(f, nil)

	_, err := tr.Trim(context.Background(), 0)
	require.NoError(t, err)
	_, err = tr.Trim(context.Background(), -3)
	require.NoError(t, err)
	_, err = tr.Trim(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, []int{500, 500, 42}, f.limits)
}

func TestTrim_PropagatesStoreError(t *testing.T) {
	boom := errors.New("disk full")
	tr := NewTrimmer(&fakeStore{err: boom}, nil)

	_, err := tr.Trim(context.Background(), 10)
	assert.ErrorIs(t, err, boom)
}

func TestTrim_SQLiteDropsOldestAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 501; i++ {
		_, err := s.InsertBlocked(ctx, model.BlockedNotification{
			PackageName: "com.app",
			Title:       fmt.Sprintf("n%03d", i),
			BlockedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	tr := NewTrimmer(s, nil)
	n, err := tr.Trim(ctx, 500)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	remaining, err := s.ListBlocked(ctx, store.ListHistoryParams{})
	require.NoError(t, err)
	require.Len(t, remaining, 500)
	assert.Equal(t, "n001", remaining[len(remaining)-1].Title)

	n, err = tr.Trim(ctx, 500)
	require.NoError(t, err)
	assert.Zero(t, n)
}

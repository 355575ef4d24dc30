// Package retention bounds the number of stored history records.
package retention

import (
	"context"

	"go.uber.org/zap"

	"github.com/rcliao/buzzbuster/internal/model"
)

// HistoryTrimmer is the store operation the trimmer relies on.
type HistoryTrimmer interface {
	TrimToLimit(ctx context.Context, n int) (int64, error)
}

// Trimmer keeps history at or under a record limit, oldest deleted first.
type Trimmer struct {
	store HistoryTrimmer
	log   *zap.Logger
}

// NewTrimmer creates a Trimmer. A nil logger disables logging.
func NewTrimmer(store HistoryTrimmer, log *zap.Logger) *Trimmer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Trimmer{store: store, log: log}
}

// Trim deletes records beyond the limit most recent ones and returns how many
// were removed. A non-positive limit falls back to the default of 500.
func (t *Trimmer) Trim(ctx context.Context, limit int) (int64, error) {
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}
	n, err := t.store.TrimToLimit(ctx, limit)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		t.log.Debug("history trimmed", zap.Int("limit", limit), zap.Int64("deleted", n))
	}
	return n, nil
}

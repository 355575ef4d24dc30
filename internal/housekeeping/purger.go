// Package housekeeping runs scheduled history maintenance.
package housekeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// History is the store surface the purger needs.
type History interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// LimitSource reports the configured history limit.
type LimitSource interface {
	HistoryLimit(ctx context.Context) (int, error)
}

// Trimmer bounds history to a record count.
type Trimmer interface {
	Trim(ctx context.Context, limit int) (int64, error)
}

// Config schedules the purge. MaxAge of zero skips the age-based delete, so
// only the count limit is re-applied.
type Config struct {
	Spec    string // cron spec, e.g. "@hourly"
	MaxAge  time.Duration
	Timeout time.Duration
}

// Purger periodically deletes history older than MaxAge and re-applies the
// history limit, which catches overshoot from concurrent inserts.
type Purger struct {
	cron    *cron.Cron
	history History
	limits  LimitSource
	trimmer Trimmer
	cfg     Config
	log     *zap.Logger
	now     func() time.Time
}

// NewPurger validates the schedule and creates a Purger. Call Start to run it.
func NewPurger(history History, limits LimitSource, trimmer Trimmer, cfg Config, log *zap.Logger) (*Purger, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Spec == "" {
		cfg.Spec = "@hourly"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	p := &Purger{
		cron:    cron.New(),
		history: history,
		limits:  limits,
		trimmer: trimmer,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
	if _, err := p.cron.AddFunc(cfg.Spec, p.tick); err != nil {
		return nil, fmt.Errorf("schedule purge %q: %w", cfg.Spec, err)
	}
	return p, nil
}

// Start runs the schedule in the background.
func (p *Purger) Start() {
	p.cron.Start()
	p.log.Info("housekeeping started", zap.String("cron", p.cfg.Spec), zap.Duration("max_age", p.cfg.MaxAge))
}

// Stop halts the schedule and waits for a running purge to finish.
func (p *Purger) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.log.Info("housekeeping stopped")
}

func (p *Purger) tick() {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("housekeeping panic", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	defer cancel()

	res, err := p.RunOnce(ctx)
	if err != nil {
		p.log.Warn("housekeeping failed", zap.Error(err))
		return
	}
	if res.Expired > 0 || res.Trimmed > 0 {
		p.log.Info("housekeeping done", zap.Int64("expired", res.Expired), zap.Int64("trimmed", res.Trimmed))
	}
}

// Result counts what one run removed.
type Result struct {
	Expired int64 `json:"expired"`
	Trimmed int64 `json:"trimmed"`
}

// RunOnce performs a single purge.
func (p *Purger) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	if p.cfg.MaxAge > 0 {
		n, err := p.history.DeleteOlderThan(ctx, p.now().Add(-p.cfg.MaxAge))
		if err != nil {
			return res, fmt.Errorf("delete expired: %w", err)
		}
		res.Expired = n
	}

	if p.limits != nil && p.trimmer != nil {
		limit, err := p.limits.HistoryLimit(ctx)
		if err != nil {
			return res, fmt.Errorf("read history limit: %w", err)
		}
		n, err := p.trimmer.Trim(ctx, limit)
		if err != nil {
			return res, fmt.Errorf("trim: %w", err)
		}
		res.Trimmed = n
	}
	return res, nil
}

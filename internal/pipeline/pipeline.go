// Package pipeline intercepts posted notifications, applies the user's rules
// and suppresses the ones that match.
//
// The pipeline fails open: any error while handling an event leaves the
// notification visible and is reported to the Diagnostics sink, never to the
// caller of Submit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rcliao/buzzbuster/internal/filter"
	"github.com/rcliao/buzzbuster/internal/model"
)

// RuleSource supplies the enabled rules in store order.
type RuleSource interface {
	ListEnabledRules(ctx context.Context) ([]model.FilterRule, error)
}

// HistoryWriter persists suppression records. A record is discarded again
// when the notification could not be withdrawn.
type HistoryWriter interface {
	InsertBlocked(ctx context.Context, n model.BlockedNotification) (string, error)
	DeleteBlockedByID(ctx context.Context, id string) error
}

// Settings exposes the preferences the pipeline reads per event.
type Settings interface {
	InterceptorEnabled(ctx context.Context) (bool, error)
	HistoryLimit(ctx context.Context) (int, error)
}

// Suppressor withdraws a notification from the OS's visible list.
type Suppressor interface {
	Cancel(ctx context.Context, cmd model.CancelNotification) error
}

// Trimmer bounds stored history.
type Trimmer interface {
	Trim(ctx context.Context, limit int) (int64, error)
}

// Deps are the collaborators a Pipeline needs. Diagnostics may be nil.
type Deps struct {
	Rules       RuleSource
	History     HistoryWriter
	Settings    Settings
	Suppressor  Suppressor
	Trimmer     Trimmer
	Diagnostics Diagnostics
}

// StoreError wraps a persistence failure with the step that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

const (
	defaultWorkers      = 4
	defaultQueueSize    = 256
	defaultEventTimeout = 10 * time.Second
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the number of concurrent event workers.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithQueueSize sets how many events may wait for a worker before new ones
// are dropped.
func WithQueueSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// WithSelfPackage sets the host application's own package, whose
// notifications are never intercepted.
func WithSelfPackage(pkg string) Option {
	return func(p *Pipeline) { p.selfPackage = pkg }
}

// WithEventTimeout bounds the store and command I/O of a single event.
func WithEventTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.eventTimeout = d
		}
	}
}

// WithClock overrides the time source used for blocked_at.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline is the event-driven interception orchestrator.
type Pipeline struct {
	deps         Deps
	workers      int
	queueSize    int
	selfPackage  string
	eventTimeout time.Duration
	now          func() time.Time

	mu      sync.RWMutex
	running bool
	queue   chan model.PostedNotification
	wg      sync.WaitGroup
}

// New creates a Pipeline. Call Start before submitting events.
func New(deps Deps, opts ...Option) *Pipeline {
	if deps.Diagnostics == nil {
		deps.Diagnostics = NopDiagnostics{}
	}
	p := &Pipeline{
		deps:         deps,
		workers:      defaultWorkers,
		queueSize:    defaultQueueSize,
		eventTimeout: defaultEventTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the worker pool. Workers stop when Stop is called; ctx
// cancellation aborts in-flight store I/O.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.queue = make(chan model.PostedNotification, p.queueSize)
	p.running = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx, p.queue)
	}
}

// Stop stops accepting events and waits for queued ones to finish.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// Submit is the OS event-delivery callback. It never blocks on I/O: guarded
// events are discarded on the spot and the rest are queued for a worker. It
// reports whether the event was queued. A full queue drops the event, which
// leaves the notification visible.
func (p *Pipeline) Submit(n model.PostedNotification) bool {
	if p.ignored(n) {
		p.deps.Diagnostics.Observe(Event{Notification: n, Outcome: OutcomeIgnored})
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		p.deps.Diagnostics.Observe(Event{Notification: n, Outcome: OutcomeDropped, Err: errors.New("pipeline not running")})
		return false
	}
	select {
	case p.queue <- n:
		return true
	default:
		p.deps.Diagnostics.Observe(Event{Notification: n, Outcome: OutcomeDropped, Err: errors.New("queue full")})
		return false
	}
}

func (p *Pipeline) work(ctx context.Context, queue <-chan model.PostedNotification) {
	defer p.wg.Done()
	for n := range queue {
		p.handle(ctx, n)
	}
}

func (p *Pipeline) handle(ctx context.Context, n model.PostedNotification) {
	start := time.Now()
	ev := Event{Notification: n}
	defer func() {
		if r := recover(); r != nil {
			ev.Outcome = OutcomeFailed
			ev.Err = fmt.Errorf("panic: %v", r)
		}
		ev.Duration = time.Since(start)
		p.deps.Diagnostics.Observe(ev)
	}()

	ctx, cancel := context.WithTimeout(ctx, p.eventTimeout)
	defer cancel()
	ev = p.Process(ctx, n)
}

func (p *Pipeline) ignored(n model.PostedNotification) bool {
	return n.IsOngoing || (p.selfPackage != "" && n.PackageName == p.selfPackage)
}

// Process runs every step for one event synchronously and reports what
// happened. Errors are carried in the returned Event, never returned.
func (p *Pipeline) Process(ctx context.Context, n model.PostedNotification) Event {
	ev := Event{Notification: n}

	if p.ignored(n) {
		ev.Outcome = OutcomeIgnored
		return ev
	}

	enabled, err := p.deps.Settings.InterceptorEnabled(ctx)
	if err != nil {
		return ev.fail(&StoreError{Op: "read interceptor flag", Err: err})
	}
	if !enabled {
		ev.Outcome = OutcomeDisabled
		return ev
	}

	rules, err := p.deps.Rules.ListEnabledRules(ctx)
	if err != nil {
		return ev.fail(&StoreError{Op: "list rules", Err: err})
	}

	res := filter.Evaluate(rules, n.PackageName, n.Title, n.Content)
	if !res.Matched {
		ev.Outcome = OutcomeNoMatch
		return ev
	}
	ev.RuleID = res.Rule.ID
	ev.RuleName = res.Rule.Name
	ev.MatchType = res.MatchType

	ruleID := res.Rule.ID
	id, err := p.deps.History.InsertBlocked(ctx, model.BlockedNotification{
		PackageName:     n.PackageName,
		AppName:         n.DisplayName(),
		Title:           n.Title,
		Content:         n.Content,
		MatchedRuleID:   &ruleID,
		MatchedRuleName: res.Rule.Name,
		MatchType:       res.MatchType,
		BlockedAt:       p.now(),
	})
	if err != nil {
		return ev.fail(&StoreError{Op: "insert record", Err: err})
	}
	ev.RecordID = id

	if err := p.deps.Suppressor.Cancel(ctx, model.CancelNotification{DeliveryKey: n.DeliveryKey}); err != nil {
		// The notification is still on screen, so history must not claim it
		// was hidden.
		ev = ev.fail(fmt.Errorf("cancel %s: %w", n.DeliveryKey, err))
		if derr := p.deps.History.DeleteBlockedByID(ctx, id); derr != nil {
			ev.Err = errors.Join(ev.Err, &StoreError{Op: "discard record", Err: derr})
		} else {
			ev.RecordID = ""
		}
		return ev
	}
	ev.Outcome = OutcomeSuppressed

	limit, err := p.deps.Settings.HistoryLimit(ctx)
	if err != nil {
		ev.Err = errors.Join(ev.Err, &StoreError{Op: "read history limit", Err: err})
		if limit <= 0 {
			limit = model.DefaultHistoryLimit
		}
	}
	if _, err := p.deps.Trimmer.Trim(ctx, limit); err != nil {
		ev.Err = errors.Join(ev.Err, &StoreError{Op: "trim history", Err: err})
	}
	return ev
}

package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/buzzbuster/internal/model"
)

// Outcome is what happened to a notification.
type Outcome int

const (
	OutcomeIgnored    Outcome = iota // own package or ongoing
	OutcomeDropped                   // never processed; left visible
	OutcomeDisabled                  // interceptor switched off
	OutcomeNoMatch
	OutcomeSuppressed
	OutcomeFailed // error before suppression; left visible
)

var outcomeNames = map[Outcome]string{
	OutcomeIgnored:    "ignored",
	OutcomeDropped:    "dropped",
	OutcomeDisabled:   "disabled",
	OutcomeNoMatch:    "no_match",
	OutcomeSuppressed: "suppressed",
	OutcomeFailed:     "failed",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// Event is the result of handling one notification. Err may be set together
// with OutcomeSuppressed when trimming failed after the notification was
// already withdrawn.
type Event struct {
	Notification model.PostedNotification
	Outcome      Outcome
	RuleID       string
	RuleName     string
	MatchType    model.MatchType
	RecordID     string
	Err          error
	Duration     time.Duration
}

func (e Event) fail(err error) Event {
	e.Outcome = OutcomeFailed
	e.Err = err
	return e
}

// Diagnostics receives every handled event. Implementations must be safe for
// concurrent use and must not block for long.
type Diagnostics interface {
	Observe(ev Event)
}

// NopDiagnostics discards events.
type NopDiagnostics struct{}

func (NopDiagnostics) Observe(Event) {}

// MultiDiagnostics fans an event out to several sinks.
type MultiDiagnostics []Diagnostics

func (m MultiDiagnostics) Observe(ev Event) {
	for _, d := range m {
		d.Observe(ev)
	}
}

// LogDiagnostics writes events to a zap logger.
type LogDiagnostics struct {
	Log *zap.Logger
}

func (d LogDiagnostics) Observe(ev Event) {
	fields := []zap.Field{
		zap.String("outcome", ev.Outcome.String()),
		zap.String("package", ev.Notification.PackageName),
		zap.String("key", ev.Notification.DeliveryKey),
	}
	if ev.RuleID != "" {
		fields = append(fields,
			zap.String("rule_id", ev.RuleID),
			zap.String("rule", ev.RuleName),
			zap.String("match_type", string(ev.MatchType)))
	}
	if ev.RecordID != "" {
		fields = append(fields, zap.String("record_id", ev.RecordID))
	}
	if ev.Duration > 0 {
		fields = append(fields, zap.Duration("took", ev.Duration))
	}

	switch {
	case ev.Err != nil:
		d.Log.Warn("notification handling failed", append(fields, zap.Error(ev.Err))...)
	case ev.Outcome == OutcomeSuppressed:
		d.Log.Info("notification suppressed", fields...)
	default:
		d.Log.Debug("notification passed", fields...)
	}
}

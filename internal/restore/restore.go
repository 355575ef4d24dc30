// Package restore re-posts suppressed notifications on user request.
package restore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/buzzbuster/internal/model"
)

// Channel is the OS notification channel restored notifications are posted on.
const Channel = "buzzbuster_restored"

// History is the store surface a Service needs.
type History interface {
	GetBlocked(ctx context.Context, id string) (*model.BlockedNotification, error)
	MarkRestored(ctx context.Context, id string) error
}

// Poster shows a notification through the OS layer.
type Poster interface {
	Post(ctx context.Context, cmd model.PostNotification) error
}

// PostError reports that a record was marked restored but the OS post failed.
// The mark is not rolled back.
type PostError struct {
	RecordID string
	Err      error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post restored notification %s: %v", e.RecordID, e.Err)
}

func (e *PostError) Unwrap() error { return e.Err }

// Service restores history records.
type Service struct {
	history History
	poster  Poster
	log     *zap.Logger
}

// NewService creates a Service. A nil logger disables logging.
func NewService(history History, poster Poster, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{history: history, poster: poster, log: log}
}

// Restore marks the record restored and then posts a fresh notification
// carrying its title and content.
func (s *Service) Restore(ctx context.Context, rec model.BlockedNotification) error {
	if err := s.history.MarkRestored(ctx, rec.ID); err != nil {
		return fmt.Errorf("mark restored: %w", err)
	}

	if err := s.poster.Post(ctx, Notification(rec)); err != nil {
		s.log.Warn("restored record could not be posted",
			zap.String("record_id", rec.ID), zap.Error(err))
		return &PostError{RecordID: rec.ID, Err: err}
	}

	s.log.Info("notification restored",
		zap.String("record_id", rec.ID), zap.String("package", rec.PackageName))
	return nil
}

// RestoreByID loads a record and restores it.
func (s *Service) RestoreByID(ctx context.Context, id string) (*model.BlockedNotification, error) {
	rec, err := s.history.GetBlocked(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Restore(ctx, *rec); err != nil {
		return nil, err
	}
	rec.IsRestored = true
	return rec, nil
}

// Notification builds the post command for a restored record. Each record
// gets a distinct id so multiple restores coexist.
func Notification(rec model.BlockedNotification) model.PostNotification {
	app := rec.AppName
	if app == "" {
		app = rec.PackageName
	}
	return model.PostNotification{
		Channel: Channel,
		ID:      "restored-" + rec.ID,
		Title:   rec.Title,
		Content: rec.Content,
		Subtext: "Restored from " + app,
	}
}

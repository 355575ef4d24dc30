package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rcliao/buzzbuster/internal/model"
)

func TestSettingsDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	st, err := s.Settings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st != model.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", st)
	}

	enabled, _ := s.InterceptorEnabled(ctx)
	limit, _ := s.HistoryLimit(ctx)
	key, _ := s.GeminiAPIKey(ctx)
	if !enabled || limit != 500 || key != "" {
		t.Errorf("unexpected defaults: %v %d %q", enabled, limit, key)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.SetInterceptorEnabled(ctx, false)
	s.SetHistoryLimit(ctx, 25)
	s.SetGeminiAPIKey(ctx, "k-123")
	s.SetThemeMode(ctx, "light")
	s.SetAutoWipeEnabled(ctx, true)

	want := model.Settings{
		InterceptorEnabled: false,
		HistoryLimit:       25,
		GeminiAPIKey:       "k-123",
		ThemeMode:          "light",
		AutoWipeEnabled:    true,
	}
	got, err := s.Settings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if err := s.ResetSettings(ctx); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Settings(ctx)
	if got != model.DefaultSettings() {
		t.Errorf("expected defaults after reset, got %+v", got)
	}
}

func TestSettingsValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var ve *model.ValidationError
	if err := s.SetHistoryLimit(ctx, 0); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for zero limit, got %v", err)
	}
	if err := s.SetThemeMode(ctx, "neon"); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for theme, got %v", err)
	}
}

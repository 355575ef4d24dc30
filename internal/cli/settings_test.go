package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rcliao/buzzbuster/internal/model"
	"github.com/rcliao/buzzbuster/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestApplySettingHistoryLimitTrims(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.InsertBlocked(ctx, model.BlockedNotification{PackageName: "com.app"}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := applySetting(ctx, s, "history_limit", "3")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 trimmed, got %d", n)
	}
	if c, _ := s.CountBlocked(ctx); c != 3 {
		t.Errorf("expected 3 left, got %d", c)
	}
	if l, _ := s.HistoryLimit(ctx); l != 3 {
		t.Errorf("expected limit 3, got %d", l)
	}
}

func TestApplySettingValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var ve *model.ValidationError
	for _, kv := range [][2]string{
		{"interceptor_enabled", "maybe"},
		{"history_limit", "lots"},
		{"history_limit", "0"},
		{"theme_mode", "neon"},
	} {
		if _, err := applySetting(ctx, s, kv[0], kv[1]); !errors.As(err, &ve) {
			t.Errorf("%s=%s: expected ValidationError, got %v", kv[0], kv[1], err)
		}
	}
	if _, err := applySetting(ctx, s, "volume", "11"); err == nil {
		t.Error("expected error for unknown key")
	}

	if _, err := applySetting(ctx, s, "interceptor_enabled", "false"); err != nil {
		t.Fatal(err)
	}
	if on, _ := s.InterceptorEnabled(ctx); on {
		t.Error("interceptor should be off")
	}
}

func TestMaskKey(t *testing.T) {
	for in, want := range map[string]string{"": "", "abc": "****", "AIzaSy123456": "****3456"} {
		if got := maskKey(in); got != want {
			t.Errorf("maskKey(%q) = %q, want %q", in, got, want)
		}
	}
}

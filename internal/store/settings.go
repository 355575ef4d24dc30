package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/rcliao/buzzbuster/internal/model"
)

// Settings returns every preference, defaulting the unset ones.
func (s *SQLiteStore) Settings(ctx context.Context) (model.Settings, error) {
	st := model.DefaultSettings()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return st, err
		}
		switch key {
		case model.SettingInterceptorEnabled:
			st.InterceptorEnabled, err = strconv.ParseBool(value)
		case model.SettingHistoryLimit:
			st.HistoryLimit, err = strconv.Atoi(value)
		case model.SettingGeminiAPIKey:
			st.GeminiAPIKey = value
		case model.SettingThemeMode:
			st.ThemeMode = value
		case model.SettingAutoWipeEnabled:
			st.AutoWipeEnabled, err = strconv.ParseBool(value)
		}
		if err != nil {
			return st, fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return st, rows.Err()
}

func (s *SQLiteStore) InterceptorEnabled(ctx context.Context) (bool, error) {
	v, ok, err := s.getSetting(ctx, model.SettingInterceptorEnabled)
	if err != nil || !ok {
		return true, err
	}
	return strconv.ParseBool(v)
}

func (s *SQLiteStore) HistoryLimit(ctx context.Context) (int, error) {
	v, ok, err := s.getSetting(ctx, model.SettingHistoryLimit)
	if err != nil || !ok {
		return model.DefaultHistoryLimit, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return model.DefaultHistoryLimit, fmt.Errorf("setting %s: invalid value %q", model.SettingHistoryLimit, v)
	}
	return n, nil
}

func (s *SQLiteStore) GeminiAPIKey(ctx context.Context) (string, error) {
	v, _, err := s.getSetting(ctx, model.SettingGeminiAPIKey)
	return v, err
}

func (s *SQLiteStore) SetInterceptorEnabled(ctx context.Context, enabled bool) error {
	return s.setSetting(ctx, model.SettingInterceptorEnabled, strconv.FormatBool(enabled))
}

func (s *SQLiteStore) SetHistoryLimit(ctx context.Context, limit int) error {
	if limit <= 0 {
		return &model.ValidationError{Field: model.SettingHistoryLimit, Reason: "must be positive"}
	}
	return s.setSetting(ctx, model.SettingHistoryLimit, strconv.Itoa(limit))
}

func (s *SQLiteStore) SetGeminiAPIKey(ctx context.Context, key string) error {
	return s.setSetting(ctx, model.SettingGeminiAPIKey, key)
}

func (s *SQLiteStore) SetThemeMode(ctx context.Context, mode string) error {
	if !model.ValidThemeModes[mode] {
		return &model.ValidationError{Field: model.SettingThemeMode, Reason: fmt.Sprintf("unknown mode %q (valid: dark, light, system)", mode)}
	}
	return s.setSetting(ctx, model.SettingThemeMode, mode)
}

func (s *SQLiteStore) SetAutoWipeEnabled(ctx context.Context, enabled bool) error {
	return s.setSetting(ctx, model.SettingAutoWipeEnabled, strconv.FormatBool(enabled))
}

// ResetSettings drops every stored preference back to its default.
func (s *SQLiteStore) ResetSettings(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings`)
	return err
}

func (s *SQLiteStore) getSetting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLiteStore) setSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

package model

// Setting keys persisted in the settings table.
const (
	SettingInterceptorEnabled = "interceptor_enabled"
	SettingHistoryLimit       = "history_limit"
	SettingGeminiAPIKey       = "gemini_api_key"
	SettingThemeMode          = "theme_mode"
	SettingAutoWipeEnabled    = "auto_wipe_enabled"
)

// Setting defaults.
const (
	DefaultHistoryLimit = 500
	DefaultThemeMode    = "dark"
)

// ValidThemeModes are the allowed theme modes.
var ValidThemeModes = map[string]bool{
	"dark":   true,
	"light":  true,
	"system": true,
}

// Settings is a snapshot of every user preference.
type Settings struct {
	InterceptorEnabled bool   `json:"interceptor_enabled"`
	HistoryLimit       int    `json:"history_limit"`
	GeminiAPIKey       string `json:"gemini_api_key,omitempty"`
	ThemeMode          string `json:"theme_mode"`
	AutoWipeEnabled    bool   `json:"auto_wipe_enabled"`
}

// DefaultSettings returns the preferences of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		InterceptorEnabled: true,
		HistoryLimit:       DefaultHistoryLimit,
		ThemeMode:          DefaultThemeMode,
	}
}

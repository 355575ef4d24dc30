package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/buzzbuster/internal/model"
	"github.com/rcliao/buzzbuster/internal/retention"
	"github.com/rcliao/buzzbuster/internal/store"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change preferences",
}

func init() {
	get := &cobra.Command{
		Use:   "get",
		Short: "Show all preferences",
		Run:   runSettingsGet,
	}
	get.Flags().Bool("show-key", false, "Print the API key instead of masking it")

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Long: "Change a preference. Keys: interceptor_enabled, history_limit, gemini_api_key, theme_mode, auto_wipe_enabled.\n" +
			"Lowering history_limit deletes the oldest records right away.",
		Args: cobra.ExactArgs(2),
		Run:  runSettingsSet,
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore default preferences",
		Run:   runSettingsReset,
	}

	nuke := &cobra.Command{
		Use:   "nuke",
		Short: "Delete all history and reset preferences",
		Run:   runSettingsNuke,
	}
	nuke.Flags().Bool("yes", false, "Confirm")

	settingsCmd.AddCommand(get, set, reset, nuke)
	RootCmd.AddCommand(settingsCmd)
}

func maskKey(k string) string {
	if len(k) <= 4 {
		if k == "" {
			return ""
		}
		return "****"
	}
	return "****" + k[len(k)-4:]
}

func runSettingsGet(cmd *cobra.Command, args []string) {
	showKey, _ := cmd.Flags().GetBool("show-key")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	st, err := s.Settings(cmd.Context())
	if err != nil {
		exitErr("settings", err)
	}
	if !showKey {
		st.GeminiAPIKey = maskKey(st.GeminiAPIKey)
	}
	printJSON(st)
}

func runSettingsSet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	trimmed, err := applySetting(cmd.Context(), s, args[0], args[1])
	if err != nil {
		exitErr("set", err)
	}
	fmt.Printf(`{"ok":true,"key":%q,"trimmed":%d}`+"\n", args[0], trimmed)
}

// applySetting stores one preference and returns how many history records
// were trimmed as a consequence.
func applySetting(ctx context.Context, s *store.SQLiteStore, key, value string) (int64, error) {
	switch key {
	case model.SettingInterceptorEnabled, model.SettingAutoWipeEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return 0, &model.ValidationError{Field: key, Reason: "must be true or false"}
		}
		if key == model.SettingInterceptorEnabled {
			return 0, s.SetInterceptorEnabled(ctx, b)
		}
		return 0, s.SetAutoWipeEnabled(ctx, b)
	case model.SettingHistoryLimit:
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, &model.ValidationError{Field: key, Reason: "must be a number"}
		}
		if err := s.SetHistoryLimit(ctx, n); err != nil {
			return 0, err
		}
		return retention.NewTrimmer(s, nil).Trim(ctx, n)
	case model.SettingGeminiAPIKey:
		return 0, s.SetGeminiAPIKey(ctx, value)
	case model.SettingThemeMode:
		return 0, s.SetThemeMode(ctx, value)
	default:
		return 0, fmt.Errorf("unknown setting %q", key)
	}
}

func runSettingsReset(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.ResetSettings(cmd.Context()); err != nil {
		exitErr("reset", err)
	}
	printJSON(model.DefaultSettings())
}

func runSettingsNuke(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		exitErr("nuke", fmt.Errorf("refusing to delete everything without --yes"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.DeleteAllBlocked(cmd.Context())
	if err != nil {
		exitErr("nuke", err)
	}
	if err := s.ResetSettings(cmd.Context()); err != nil {
		exitErr("nuke", err)
	}
	fmt.Printf(`{"ok":true,"deleted":%d}`+"\n", n)
}

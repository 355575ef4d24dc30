// Package cli implements the buzzbuster CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/buzzbuster/internal/config"
	"github.com/rcliao/buzzbuster/internal/logging"
	"github.com/rcliao/buzzbuster/internal/store"
)

// Version is set at build time.
var Version = "dev"

var (
	dbPath     string
	configPath string
	formatFlag string

	cfg *config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "buzzbuster",
	Short: "Filter out unwanted notifications",
	Long: "Suppresses notifications that match your rules and keeps a searchable, restorable history of them. " +
		"SQLite-backed, single binary.",
	Version: Version,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $BUZZBUSTER_DB or ~/.buzzbuster/buzzbuster.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.buzzbuster/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	c, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	cfg = c
	return cfg
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return getConfig().DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func newLogger() *zap.Logger {
	c := getConfig()
	return logging.New(logging.Config{Level: c.Log.Level, Format: c.Log.Format})
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func textOutput() bool {
	return formatFlag == "text"
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// Package config loads process-level settings from a YAML file. User
// preferences such as the history limit live in the database, not here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration.
type Config struct {
	DBPath      string           `yaml:"db_path"`
	OutboxPath  string           `yaml:"outbox_path"` // commands from one-shot CLI and MCP runs
	SelfPackage string           `yaml:"self_package"`
	Log         LogConfig        `yaml:"log"`
	Pipeline    PipelineConfig   `yaml:"pipeline"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Housekeep   HousekeepConfig  `yaml:"housekeeping"`
	PatternGen  PatternGenConfig `yaml:"pattern_generation"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

type PipelineConfig struct {
	Workers      int           `yaml:"workers"`
	QueueSize    int           `yaml:"queue_size"`
	EventTimeout time.Duration `yaml:"event_timeout"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// HousekeepConfig schedules the age-based purge. MaxAge of zero disables it.
type HousekeepConfig struct {
	Cron   string        `yaml:"cron"`
	MaxAge time.Duration `yaml:"max_age"`
}

type PatternGenConfig struct {
	Provider string `yaml:"provider"` // gemini, openai
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

// DefaultPath is ~/.buzzbuster/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".buzzbuster", "config.yaml")
}

// Load reads the file at path, applies defaults and then environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		content := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyDefaults(cfg)
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if cfg.OutboxPath == "" {
		cfg.OutboxPath = filepath.Join(filepath.Dir(cfg.DBPath), "outbox.jsonl")
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DBPath == "" {
		home, _ := os.UserHomeDir()
		cfg.DBPath = filepath.Join(home, ".buzzbuster", "buzzbuster.db")
	}
	if cfg.SelfPackage == "" {
		cfg.SelfPackage = "com.buzzbuster"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Pipeline.Workers <= 0 {
		cfg.Pipeline.Workers = 4
	}
	if cfg.Pipeline.QueueSize <= 0 {
		cfg.Pipeline.QueueSize = 256
	}
	if cfg.Pipeline.EventTimeout <= 0 {
		cfg.Pipeline.EventTimeout = 10 * time.Second
	}
	if cfg.Housekeep.Cron == "" {
		cfg.Housekeep.Cron = "@hourly"
	}
	if cfg.PatternGen.Provider == "" {
		cfg.PatternGen.Provider = "gemini"
	}
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("BUZZBUSTER_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("BUZZBUSTER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BUZZBUSTER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("BUZZBUSTER_WORKERS: invalid value %q", v)
		}
		cfg.Pipeline.Workers = n
	}
	if v := os.Getenv("BUZZBUSTER_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	return nil
}

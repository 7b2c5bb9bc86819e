package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the CLI configuration: riding.yaml, RIDING_* variables, flags.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Cycle struct {
		Steps    int     `mapstructure:"steps"`
		StepSize float64 `mapstructure:"step_size"`
	} `mapstructure:"cycle"`
	Parallelism int `mapstructure:"parallelism"`
}

// flagKeys maps configuration keys to the flags that override them.
var flagKeys = map[string]string{
	"log.level":       "log-level",
	"log.format":      "log-format",
	"parallelism":     "parallelism",
	"cycle.steps":     "steps",
	"cycle.step_size": "step-size",
}

// loadConfig reads the configuration for cmd. Precedence: flag > env > file > default.
func loadConfig(cmd *cobra.Command, path string) (*Config, error) {
	v := viper.New()

	// 1. Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("cycle.steps", 10)
	v.SetDefault("cycle.step_size", 0.01)
	v.SetDefault("parallelism", 1)

	// 2. Optional file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("riding")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	// 3. Environment and flags
	v.SetEnvPrefix("RIDING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("config: bind %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

// newLogger builds the slog logger described by cfg.
func newLogger(cfg *Config, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("config: unknown log format %q", cfg.Log.Format)
	}
}

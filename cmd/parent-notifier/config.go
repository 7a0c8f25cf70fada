package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/hydazz/parent-notifier/internal/config"
	"github.com/spf13/viper"
)

// loadConfig decodes flags and env vars, validates them and installs the
// default logger writing to w.
func loadConfig(w io.Writer) (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Set up structured logging with slog
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.GetLogLevel(),
	}))
	slog.SetDefault(logger)

	return cfg, nil
}

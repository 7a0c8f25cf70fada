package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAnalyticsEndpoint = "https://www.google-analytics.com"
	DefaultAnalyticsClientID = "parent-notifier"
)

// Config represents the application configuration
type Config struct {
	Firebase  FirebaseConfig  `mapstructure:"firebase"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Server    ServerConfig    `mapstructure:"server"`
	Exporter  ExporterConfig  `mapstructure:"exporter"`
	LogLevel  string          `mapstructure:"log_level"`
}

// FirebaseConfig contains Realtime Database settings
type FirebaseConfig struct {
	DatabaseURL string        `mapstructure:"database_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AnalyticsConfig contains Measurement Protocol settings.
// Analytics is disabled when MeasurementID is empty.
type AnalyticsConfig struct {
	MeasurementID string        `mapstructure:"measurement_id"`
	APISecret     string        `mapstructure:"api_secret"`
	ClientID      string        `mapstructure:"client_id"`
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
	MetricsPath   string `mapstructure:"metrics_path"`
}

// ExporterConfig contains exporter-specific configuration
type ExporterConfig struct {
	InstanceName string `mapstructure:"instance_name"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errors []string

	if c.Firebase.DatabaseURL == "" {
		errors = append(errors, "firebase.database_url is required")
	} else if u, err := url.Parse(c.Firebase.DatabaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, "firebase.database_url must be an absolute URL")
	}
	c.Firebase.DatabaseURL = strings.TrimRight(c.Firebase.DatabaseURL, "/")

	if c.Firebase.Timeout <= 0 {
		c.Firebase.Timeout = 10 * time.Second
	}

	if c.Analytics.MeasurementID != "" && c.Analytics.APISecret == "" {
		errors = append(errors, "analytics.api_secret is required when analytics.measurement_id is set")
	}

	if c.Analytics.ClientID == "" {
		c.Analytics.ClientID = DefaultAnalyticsClientID
	}

	if c.Analytics.Timeout <= 0 {
		c.Analytics.Timeout = 5 * time.Second
	}

	if c.Analytics.Endpoint == "" {
		c.Analytics.Endpoint = DefaultAnalyticsEndpoint
	}

	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":9090"
	}

	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = "/metrics"
	}

	if c.Exporter.InstanceName == "" {
		c.Exporter.InstanceName = "parent-notifier"
	}

	// Set default log level if empty
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, level := range validLogLevels {
		if strings.ToLower(c.LogLevel) == level {
			levelValid = true
			break
		}
	}
	if !levelValid {
		errors = append(errors, fmt.Sprintf("log_level must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// AnalyticsEnabled reports whether analytics events should be sent
func (c *Config) AnalyticsEnabled() bool {
	return c.Analytics.MeasurementID != ""
}

// GetLogLevel returns the slog.Level for the configured log level
func (c *Config) GetLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsDebugEnabled returns true if debug logging is enabled
func (c *Config) IsDebugEnabled() bool {
	return strings.ToLower(c.LogLevel) == "debug"
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Values from .env act as environment variables; a missing file is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parent-notifier",
		Short: "Detection alert feed backed by Firebase Realtime Database",
		Long: `Reads detection alerts from a Firebase Realtime Database, orders them
newest first and serves the feed as JSON, together with a connectivity diagnostic.`,

		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors manually
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	// Setup Viper for automatic env binding
	viper.SetEnvPrefix("PARENT_NOTIFIER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	flags := cmd.PersistentFlags()
	flags.String("firebase-database-url", "", "Firebase Realtime Database URL")
	flags.Duration("firebase-timeout", 10*time.Second, "Timeout for a single database request")
	flags.String("analytics-measurement-id", "", "Analytics measurement id (empty disables analytics)")
	flags.String("analytics-api-secret", "", "Analytics Measurement Protocol API secret")
	flags.String("analytics-client-id", "", "Client id reported with analytics events")
	flags.String("analytics-endpoint", "", "Analytics Measurement Protocol endpoint")
	flags.Duration("analytics-timeout", 5*time.Second, "Timeout for delivering one analytics event")
	flags.String("listen-address", ":9090", "Address to listen on for the feed API and metrics")
	flags.String("metrics-path", "/metrics", "Path under which to expose metrics")
	flags.String("instance-name", "parent-notifier", "Instance name to use in metrics labels")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	// Bind flags to viper
	bindings := map[string]string{
		"firebase.database_url":    "firebase-database-url",
		"firebase.timeout":         "firebase-timeout",
		"analytics.measurement_id": "analytics-measurement-id",
		"analytics.api_secret":     "analytics-api-secret",
		"analytics.client_id":      "analytics-client-id",
		"analytics.endpoint":       "analytics-endpoint",
		"analytics.timeout":        "analytics-timeout",
		"server.listen_address":    "listen-address",
		"server.metrics_path":      "metrics-path",
		"exporter.instance_name":   "instance-name",
		"log_level":                "log-level",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}

	cmd.AddCommand(
		newServeCmd(),
		newEventsCmd(),
		newTestConnectionCmd(),
		newPublishCmd(),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "parent-notifier %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", date)
		},
	}
}

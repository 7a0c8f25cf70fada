package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hydazz/parent-notifier/internal/firebase"
	"github.com/hydazz/parent-notifier/internal/models"
	"github.com/spf13/cobra"
)

// detectionTimeLayout matches the local ISO-8601 timestamps detectors write.
const detectionTimeLayout = "2006-01-02T15:04:05.000000"

func newPublishCmd() *cobra.Command {
	var eventType, message string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Push a detection record to the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventType == "" || message == "" {
				return errors.New("--type and --message are required")
			}

			cfg, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}

			key, err := firebase.New(cfg.Firebase).PushDetection(cmd.Context(), models.Detection{
				EventType:    eventType,
				EventMessage: message,
				Timestamp:    time.Now().Format(detectionTimeLayout),
			})
			if err != nil {
				return fmt.Errorf("failed to publish detection: %w", err)
			}

			slog.Info("Detection logged", "type", eventType, "key", key)
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "", "Detection type, e.g. NSFW_DETECTED or TOXIC_TEXT")
	cmd.Flags().StringVar(&message, "message", "", "Human-readable alert message")

	return cmd
}

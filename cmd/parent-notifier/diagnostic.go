package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hydazz/parent-notifier/internal/analytics"
	"github.com/hydazz/parent-notifier/internal/diagnostic"
	"github.com/hydazz/parent-notifier/internal/firebase"
	"github.com/spf13/cobra"
)

func newTestConnectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Log a test analytics event and write a test value to the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}

			checker := diagnostic.NewChecker(analytics.New(cfg.Analytics), firebase.New(cfg.Firebase))
			res := checker.Run(cmd.Context())

			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			if !res.Connected {
				return errors.New("connection test failed")
			}
			return nil
		},
	}
}

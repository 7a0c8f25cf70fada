package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/hydazz/parent-notifier/internal/feed"
	"github.com/hydazz/parent-notifier/internal/firebase"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Fetch the detection feed once and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}

			presenter := feed.NewPresenter(firebase.New(cfg.Firebase))
			state := presenter.Refresh(cmd.Context())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(state); err != nil {
					return err
				}
			} else if err := printFeed(cmd.OutOrStdout(), state); err != nil {
				return err
			}

			if state.ErrorMessage != "" {
				return errors.New(state.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the feed state as JSON")

	return cmd
}

func printFeed(w io.Writer, state feed.State) error {
	fmt.Fprintln(w, state.PageLabel())
	if state.ErrorMessage != "" {
		fmt.Fprintln(w, state.ErrorMessage)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range state.Events {
		fmt.Fprintf(tw, "%s\t%s\n", e.TimeOfDetection, e.AlertMessage)
	}
	return tw.Flush()
}

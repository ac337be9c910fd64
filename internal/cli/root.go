// Package cli implements the triggerz command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zoobzio/triggerz/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel  string
	LogFormat string // "text" | "json"

	// Logger is built from the flags before any subcommand runs.
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the triggerz CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "triggerz",
		Short: "Charge, cancel and release trigger windows over event streams",
		Long: `triggerz opens a window on every start event, discards it when a cancel
event arrives and emits once the window is released.

Use "play" to replay a scripted scenario on virtual time and "watch" to drive
a trigger from live file changes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.NewLogger(opts.LogFormat, opts.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.Logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json)")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

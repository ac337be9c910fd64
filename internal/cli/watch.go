package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoobzio/triggerz"
	"github.com/zoobzio/triggerz/internal/config"
	"github.com/zoobzio/triggerz/internal/logging"
	"github.com/zoobzio/triggerz/internal/source"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Config string
	Watch  config.Watch
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Release a trigger when file changes settle",
		Long: `Watch paths for file changes. A create or write opens a window, a remove
or rename cancels it, and the window is released once no change has arrived
for the quiet period, or on the next cron tick when --cron is set. Every
release is printed and logged.

Examples:
  triggerz watch ./src --quiet 500ms
  triggerz watch ./src ./docs --cron "0 */5 * * * *" --policy discard-if-started
  triggerz watch --config watch.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd, args)
			if err != nil {
				return err
			}
			return Watch(cmd.Context(), cfg, cmd.OutOrStdout(), opts.Logger)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "watch configuration file")
	cmd.Flags().DurationVar(&opts.Watch.QuietPeriod, "quiet", 2*time.Second, "quiet period before a window is released")
	cmd.Flags().StringVar(&opts.Watch.Cron, "cron", "", "also release on every tick of this cron expression (seconds first)")
	cmd.Flags().StringVar(&opts.Watch.Policy, "policy", "", "overlap policy (cancel-previous|independent|discard-if-started)")
	cmd.Flags().StringSliceVar(&opts.Watch.Ignore, "ignore", nil, "base name patterns to ignore")
	cmd.Flags().IntVar(&opts.Watch.MaxRetries, "max-retries", 3, "watcher restarts before giving up")

	return cmd
}

// resolve merges the configuration file, positional paths and flags. Flags
// that were set explicitly win over the file.
func (o *WatchOptions) resolve(cmd *cobra.Command, args []string) (*config.Watch, error) {
	cfg := &config.Watch{}
	if o.Config != "" {
		loaded, err := config.LoadWatch(o.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.Paths = append(cfg.Paths, args...)
	flags := cmd.Flags()
	if flags.Changed("quiet") || cfg.QuietPeriod == 0 {
		cfg.QuietPeriod = o.Watch.QuietPeriod
	}
	if flags.Changed("cron") {
		cfg.Cron = o.Watch.Cron
	}
	if flags.Changed("policy") {
		cfg.Policy = o.Watch.Policy
	}
	if flags.Changed("ignore") {
		cfg.Ignore = o.Watch.Ignore
	}
	if flags.Changed("max-retries") || cfg.MaxRetries == 0 {
		cfg.MaxRetries = o.Watch.MaxRetries
	}
	config.ApplyWatchDefaults(cfg)
	return cfg, nil
}

type fileOrTick = triggerz.Either[source.Event, source.Event]

func isChange(e fileOrTick) bool {
	f, ok := e.LeftValue()
	return ok && f.IsChange()
}

func isRemoval(e fileOrTick) bool {
	f, ok := e.LeftValue()
	return ok && f.IsRemoval()
}

// Watch runs a file change trigger until ctx is done, writing one line per
// release to out. It returns nil when ctx ends the run.
func Watch(ctx context.Context, cfg *config.Watch, out io.Writer, logger *slog.Logger) error {
	if len(cfg.Paths) == 0 {
		return errors.New("watch needs at least one path")
	}
	policy, err := triggerz.ParsePolicy(cfg.Policy)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logging.WithTrigger(logger, cfg.Name)
	sched := triggerz.DefaultScheduler

	files := triggerz.Retry(source.FSNotify(sched, cfg.Paths, cfg.Ignore...), sched, triggerz.RetryConfig{
		MaxRetries: cfg.MaxRetries,
		Backoff:    triggerz.ExponentialBackoff(100*time.Millisecond, 5*time.Second),
	})
	ticks := triggerz.Never[source.Event]()
	if cfg.Cron != "" {
		if ticks, err = source.Cron(cfg.Cron, sched); err != nil {
			return err
		}
	}
	events := triggerz.Finally(triggerz.MergeEither(files, ticks), func() {
		logger.Debug("watch stopped")
	})

	cancelOf := func(w *triggerz.Window[fileOrTick]) triggerz.Observable[any] {
		return triggerz.AsAny(triggerz.Filter[fileOrTick](w, isRemoval))
	}
	trig := triggerz.NewTrigger(isChange, cancelOf, sched).
		WithName(cfg.Name).
		WithPolicy(policy).
		WithLogger(logger)

	quiet := cfg.QuietPeriod
	if cfg.Cron != "" {
		trig.ReleaseWhen(func(w *triggerz.Window[fileOrTick]) triggerz.Observable[any] {
			return triggerz.Merge(
				triggerz.AsAny(triggerz.Debounce[fileOrTick](w, quiet, sched)),
				triggerz.AsAny(triggerz.Filter[fileOrTick](w, fileOrTick.IsRight)),
			)
		})
	} else {
		trig.ReleaseAfter(func(int) time.Duration { return quiet })
	}

	releases, err := trig.Releases(events)
	if err != nil {
		return err
	}

	logger.Info("watching", "paths", cfg.Paths, "quiet", quiet, "policy", policy.String())
	for r := range triggerz.ToChan(ctx, releases) {
		if r.IsError() {
			return fmt.Errorf("watch %s: %w", cfg.Name, r.Error().Err)
		}
		rel := r.Value()
		start, _ := rel.Start.LeftValue()
		logger.Info("released",
			"window", rel.Seq,
			"path", start.Path,
			"waited", rel.ReleasedAt.Sub(rel.OpenedAt),
		)
		fmt.Fprintf(out, "release #%d %s\n", rel.Seq, start)
	}

	stats := trig.Stats()
	logger.Info("watch finished", "released", stats.Released, "cancelled", stats.Cancelled+stats.Preempted)
	return nil
}

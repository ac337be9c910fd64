package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoobzio/triggerz"
	"github.com/zoobzio/triggerz/internal/config"
	"github.com/zoobzio/triggerz/internal/logging"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Policy string
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play [scenario.yaml]",
		Short: "Replay a scenario on virtual time",
		Long: `Replay a scripted event stream through a trigger on a virtual clock and
print every source and trigger notification with its offset, followed by the
window statistics. Without a file the built-in playground is replayed.

Examples:
  triggerz play
  triggerz play ./scenario.yaml --policy independent`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario := config.DefaultScenario()
			if len(args) == 1 {
				s, err := config.LoadScenario(args[0])
				if err != nil {
					return err
				}
				scenario = s
			}
			if cmd.Flags().Changed("policy") {
				scenario.Policy = opts.Policy
			}
			_, err := Play(scenario, cmd.OutOrStdout(), opts.Logger)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Policy, "policy", "", "override the scenario policy (cancel-previous|independent|discard-if-started)")

	return cmd
}

// Play replays s on a virtual scheduler, writing the trace and a statistics
// line to out. It returns the trigger statistics of the run.
func Play(s *config.Scenario, out io.Writer, logger *slog.Logger) (triggerz.TriggerStats, error) {
	policy, err := triggerz.ParsePolicy(s.Policy)
	if err != nil {
		return triggerz.TriggerStats{}, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := time.Time{}
	sched := triggerz.NewVirtualScheduler(start)
	trace := elapsedWriter(out, sched, start)

	events := make([]triggerz.Timed[int], 0, len(s.Events))
	for _, e := range s.Events {
		events = append(events, triggerz.At(e.At, e.Value))
	}
	source := triggerz.Dump[int](triggerz.NewTimeline(sched, events...).CompleteAt(s.CompleteAt), trace, "source", logger)

	trig := triggerz.NewTrigger(member(s.Start), valuesOf(s.Cancel), sched).
		WithName(s.Name).
		WithPolicy(policy).
		WithLogger(logging.WithTrigger(logger, s.Name))
	if len(s.ReleaseOn) > 0 {
		trig.ReleaseWhen(valuesOf(s.ReleaseOn))
	} else {
		quiet := s.ReleaseAfter
		trig.ReleaseAfter(func(int) time.Duration { return quiet })
	}

	released, err := trig.Observe(source)
	if err != nil {
		return triggerz.TriggerStats{}, err
	}

	var failed error
	sub := triggerz.Dump(released, trace, "trigger", logger).Subscribe(triggerz.ObserverFuncs[triggerz.Unit]{
		Error: func(err error) { failed = err },
	})
	defer sub.Dispose()
	sched.Run()

	stats := trig.Stats()
	writeStats(out, stats)
	if failed != nil {
		return stats, fmt.Errorf("scenario %s: %w", s.Name, failed)
	}
	return stats, nil
}

// valuesOf selects the window values listed in values.
func valuesOf(values []int) triggerz.Selector[int] {
	match := member(values)
	return func(w *triggerz.Window[int]) triggerz.Observable[any] {
		return triggerz.AsAny(triggerz.Filter[int](w, match))
	}
}

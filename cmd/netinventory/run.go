package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"netinventory/internal/adapter"
	"netinventory/internal/domain"
	"netinventory/internal/scheduler"
	"netinventory/internal/service"
	"netinventory/internal/watcher"
)

// Job names
const (
	jobScan     = "scan"
	jobClassify = "classify"
	jobRecheck  = "recheck"
	jobPrune    = "prune"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		once    bool
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scans, classification, re-checks and pruning on a schedule",
		Long: `Starts the scheduler with the intervals from the schedule section of the
config: scan of schedule.targets, classification of pending discoveries,
liveness re-check of the registry, and retention pruning. A zero interval
disables a job. No two jobs ever run at the same time.

The config file is watched; department rules and the organization catalog
are reloaded without a restart.

With --once every job runs a single time, in that order, and the command exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			events := make(chan service.Event, 100)
			a.bus.Subscribe(events)
			go logEvents(ctx, a.log, events)

			reg := scheduler.NewRegistry(a.log)
			if err := registerJobs(ctx, a, reg); err != nil {
				return err
			}

			if once {
				var errs []error
				for _, name := range []string{jobScan, jobClassify, jobRecheck, jobPrune} {
					if err := reg.Trigger(ctx, name); err != nil {
						errs = append(errs, err)
					}
				}
				return a.print(map[string]any{"jobs": reg.List(), "error": errorString(errors.Join(errs...))})
			}

			reg.Start(ctx)
			a.log.Info().Msg("scheduler running")

			if a.cfgPath != "" && !noWatch {
				w := watcher.New(a.cfgPath, a.applyConfig, a.log)
				go func() {
					if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
						a.log.Error().Err(err).Msg("config watcher stopped")
					}
				}()
			}

			<-ctx.Done()
			a.log.Info().Msg("shutting down")
			reg.Stop()
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run every job once and exit")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the config file on change")
	return cmd
}

// registerJobs wires the four inventory jobs into reg
func registerJobs(ctx context.Context, a *app, reg *scheduler.Registry) error {
	sched := a.cfg.Schedule
	prober := a.newProber(ctx)
	liveness := a.newLiveness(ctx)

	jobs := []scheduler.Job{
		{
			Name:     jobScan,
			Interval: sched.ScanInterval.Duration(),
			Run: func(ctx context.Context) error {
				return scanTargets(ctx, prober, sched.Targets)
			},
		},
		{
			Name:     jobClassify,
			Interval: sched.ClassifyInterval.Duration(),
			Run: func(ctx context.Context) error {
				_, err := a.classifier.ProcessAutoAssignment(ctx)
				return err
			},
		},
		{
			Name:     jobRecheck,
			Interval: sched.RecheckInterval.Duration(),
			Run: func(ctx context.Context) error {
				_, err := liveness.RecheckAll(ctx)
				return err
			},
		},
		{
			Name:     jobPrune,
			Interval: sched.PruneInterval.Duration(),
			Run: func(ctx context.Context) error {
				_, err := a.maintenance.Prune(ctx)
				return err
			},
		},
	}

	for _, job := range jobs {
		if err := reg.Register(job); err != nil {
			return err
		}
	}
	return nil
}

// scanTargets stages every configured address and block. One bad target does
// not stop the others.
func scanTargets(ctx context.Context, prober *adapter.Prober, targets []string) error {
	var errs []error
	for _, target := range targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var err error
		if adapter.IsCIDR(target) {
			_, err = prober.DiscoverSubnet(ctx, target)
		} else {
			_, err = prober.DiscoverSingleIP(ctx, target)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// logEvents writes every bus event to the log until ctx ends
func logEvents(ctx context.Context, log zerolog.Logger, events <-chan service.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-events:
			ev := log.Info().Str("event", string(e.Type))
			switch p := e.Payload.(type) {
			case *domain.ScanResult:
				ev = ev.Str("scan_id", p.ScanID).Str("target", p.Target).Int("alive", p.AliveCount)
			case *domain.RunStats:
				ev = ev.Str("run_id", p.RunID).Int("processed", p.Processed).Int("failed", p.Failed)
			case domain.LivenessResult:
				ev = ev.Int64("device_id", p.DeviceID).Str("status", string(p.Status))
			case domain.PruneResult:
				ev = ev.Int64("removed", p.Total())
			}
			ev.Msg("event")
		}
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

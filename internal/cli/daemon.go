package cli

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/runnerr0/statkeep/internal/config"
	"github.com/runnerr0/statkeep/internal/pruner"
)

// Execute implements the go-flags Commander interface for DaemonCommand.
func (c *DaemonCommand) Execute(args []string) error {
	cleanup, err := c.prepare(true)
	if err != nil {
		return err
	}
	defer cleanup()

	schedule := c.cfg.Retention.PruneSchedule
	if c.Schedule != "" {
		schedule = c.Schedule
	}
	metricsPath := c.MetricsFile
	if metricsPath == "" {
		if metricsPath, err = c.cfg.MetricsPath(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(c.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hours atomic.Int64
	hours.Store(c.cfg.Statistics.IntervalHours)
	retentionFn := func() time.Duration {
		return time.Duration(hours.Load()) * time.Hour
	}

	p := pruner.New(c.store, retentionFn, c.log)
	sched := pruner.NewScheduler(p, schedule, c.log).WithMetrics(pruner.NewMetrics(), metricsPath)

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	var wg sync.WaitGroup
	if c.cfgPath != "" {
		w := config.NewWatcher(c.cfgPath, func(cfg *config.Config) { c.applySettings(&hours, cfg) }, c.log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Watch(ctx); err != nil {
				c.log.WithError(err).Warn("config watcher stopped, settings changes need a restart")
			}
		}()
	}

	c.log.WithFields(logrus.Fields{
		"schedule": schedule,
		"next_run": sched.NextRun(),
	}).Info("daemon started")

	sched.RunOnce(ctx)

	<-ctx.Done()
	wg.Wait()
	c.log.Info("daemon stopping")
	return nil
}

// applySettings makes a reloaded config take effect for the next run.
func (c *DaemonCommand) applySettings(hours *atomic.Int64, cfg *config.Config) {
	hours.Store(cfg.Statistics.IntervalHours)
	c.store.SetIgnored(cfg.Statistics.Ignored)

	c.log.WithFields(logrus.Fields{
		"interval_hours": cfg.Statistics.IntervalHours,
		"ignored":        len(cfg.Statistics.Ignored),
	}).Info("statistics settings applied")
}

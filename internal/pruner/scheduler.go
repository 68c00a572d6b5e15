package pruner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs a Pruner on a cron schedule.
type Scheduler struct {
	pruner   *Pruner
	schedule string
	cron     *cron.Cron
	log      *logrus.Entry

	metrics  *Metrics
	textfile string

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	watcher sync.WaitGroup
}

// NewScheduler returns a scheduler for the standard cron expression
// schedule. An empty schedule makes Start a no-op.
func NewScheduler(p *Pruner, schedule string, log *logrus.Entry) *Scheduler {
	return &Scheduler{
		pruner:   p,
		schedule: schedule,
		log:      log.WithField("component", "scheduler"),
	}
}

// WithMetrics records every run in m. A non-empty textfile is rewritten
// after each run.
func (s *Scheduler) WithMetrics(m *Metrics, textfile string) *Scheduler {
	s.metrics = m
	s.textfile = textfile
	return s
}

// Start schedules pruning and stops it when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.schedule == "" {
		s.log.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	s.cron = c
	s.stop = make(chan struct{})
	s.cron.Start()
	s.running = true
	s.log.WithField("schedule", s.schedule).Info("prune scheduler started")

	stop := s.stop
	s.watcher.Add(1)
	go func() {
		defer s.watcher.Done()
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stop:
		}
	}()

	return nil
}

// RunOnce performs one pruning cycle and logs its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	res, err := s.pruner.Prune(ctx, false)
	s.record(res, err)
	if err != nil {
		s.log.WithError(err).Error("scheduled pruning failed")
		return
	}

	if res.Deleted > 0 {
		s.log.WithField("deleted", res.Deleted).Info("scheduled pruning completed")
	}
}

func (s *Scheduler) record(res Result, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.observe(s.pruner.now(), res, err)
	if s.textfile == "" {
		return
	}
	if err := s.metrics.WriteTextfile(s.textfile); err != nil {
		s.log.WithError(err).WithField("path", s.textfile).Warn("writing metrics textfile failed")
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stop)
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("prune scheduler stopped")
}

// IsRunning reports whether the scheduler is started.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled run, or the zero time when stopped.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

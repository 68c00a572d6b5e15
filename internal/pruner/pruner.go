// Package pruner removes recorded queries that fall outside the statistics
// retention period, on demand or on a cron schedule.
package pruner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Store is the part of the statistics store the pruner needs.
type Store interface {
	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)
	PruneExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// RetentionFunc returns the current retention period. It is called on
// every run so settings changes apply without a restart.
type RetentionFunc func() time.Duration

// Result describes one pruning run.
type Result struct {
	Cutoff  time.Time
	Deleted int64
	DryRun  bool
}

// Pruner deletes queries older than the retention period.
type Pruner struct {
	store     Store
	retention RetentionFunc
	now       func() time.Time
	log       *logrus.Entry
}

// New returns a Pruner.
func New(store Store, retention RetentionFunc, log *logrus.Entry) *Pruner {
	return &Pruner{
		store:     store,
		retention: retention,
		now:       time.Now,
		log:       log.WithField("component", "pruner"),
	}
}

// Cutoff returns the time before which queries are expired.
func (p *Pruner) Cutoff() (time.Time, error) {
	r := p.retention()
	if r <= 0 {
		return time.Time{}, errors.New("retention period must be positive")
	}
	return p.now().Add(-r), nil
}

// Prune deletes expired queries. With dryRun it only counts them.
func (p *Pruner) Prune(ctx context.Context, dryRun bool) (Result, error) {
	cutoff, err := p.Cutoff()
	if err != nil {
		return Result{}, err
	}
	return p.PruneBefore(ctx, cutoff, dryRun)
}

// PruneBefore deletes queries recorded before cutoff.
func (p *Pruner) PruneBefore(ctx context.Context, cutoff time.Time, dryRun bool) (Result, error) {
	res := Result{Cutoff: cutoff, DryRun: dryRun}

	var err error
	if dryRun {
		res.Deleted, err = p.store.CountExpired(ctx, cutoff)
	} else {
		res.Deleted, err = p.store.PruneExpired(ctx, cutoff)
	}
	if err != nil {
		return res, fmt.Errorf("pruning before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	p.log.WithFields(logrus.Fields{
		"cutoff":  cutoff.Format(time.RFC3339),
		"deleted": res.Deleted,
		"dry_run": dryRun,
	}).Debug("prune finished")

	return res, nil
}

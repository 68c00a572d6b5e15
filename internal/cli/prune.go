package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/statkeep/internal/pruner"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	var override time.Duration
	if c.OlderThan != "" {
		d, err := parseDuration(c.OlderThan)
		if err != nil {
			return err
		}
		override = d
	}

	cleanup, err := c.prepare(true)
	if err != nil {
		return err
	}
	defer cleanup()

	if c.jsonOutput() && !c.Force && !c.DryRun {
		return errors.New("--json requires --force or --dry-run")
	}

	period := override
	if period == 0 {
		period = time.Duration(c.cfg.Statistics.IntervalHours) * time.Hour
	}
	label := formatDurationHuman(period)

	p := pruner.New(c.store, func() time.Duration { return period }, c.log)

	// Count first so the prompt and the delete use the same cutoff.
	planned, err := p.Prune(c.ctx, true)
	if err != nil {
		return err
	}

	if c.DryRun {
		return c.report(planned.Deleted, true, label)
	}

	if planned.Deleted == 0 {
		if c.jsonOutput() {
			return c.report(0, false, label)
		}
		fmt.Printf("No queries to prune (older than %s).\n", label)
		return nil
	}

	if !c.Force {
		answer, ok := c.confirm(fmt.Sprintf("Prune %d queries older than %s? [y/N]: ", planned.Deleted, label))
		answer = strings.ToLower(answer)
		if !ok || (answer != "y" && answer != "yes") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	res, err := p.PruneBefore(c.ctx, planned.Cutoff, false)
	if err != nil {
		return err
	}

	detail := fmt.Sprintf("deleted=%d older_than=%s", res.Deleted, label)
	if err := c.store.RecordAudit(c.ctx, "statistics_pruned", detail); err != nil {
		return err
	}

	return c.report(res.Deleted, false, label)
}

func (c *PruneCommand) report(n int64, dryRun bool, label string) error {
	if c.jsonOutput() {
		return writeJSON(map[string]interface{}{
			"pruned":     n,
			"dry_run":    dryRun,
			"older_than": label,
		})
	}

	if dryRun {
		fmt.Printf("[DRY RUN] Would prune %d queries older than %s.\n", n, label)
		return nil
	}
	fmt.Printf("Pruned %d queries older than %s.\n", n, label)
	return nil
}

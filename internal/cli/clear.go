package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/runnerr0/statkeep/internal/retention"
)

// Execute implements the go-flags Commander interface for ClearCommand.
func (c *ClearCommand) Execute(args []string) error {
	if c.jsonOutput() && !c.Force {
		return errors.New("--json requires --force")
	}

	cleanup, err := c.prepare(true)
	if err != nil {
		return err
	}
	defer cleanup()

	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL collected statistics.")
		fmt.Println("Settings and the ignored list are kept.")
		fmt.Println()
		answer, ok := c.confirm(`Type "CLEAR" to confirm: `)
		if !ok {
			return errors.New("aborted: no input received")
		}
		if answer != "CLEAR" {
			return errors.New("aborted: confirmation text did not match")
		}
	}

	form := retention.NewForm(retention.Props{
		InitialValues: c.formValues(),
		OnReset:       c.reset,
	})
	if err := form.Reset(c.ctx); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	if c.jsonOutput() {
		return writeJSON(map[string]interface{}{
			"cleared": true,
			"message": "all statistics deleted",
		})
	}

	fmt.Println("Cleared all statistics.")
	return nil
}

func (c *ClearCommand) reset(ctx context.Context) error {
	if err := c.store.PurgeAll(ctx); err != nil {
		return err
	}
	c.log.Info("statistics cleared")
	return c.store.RecordAudit(ctx, "statistics_cleared", "")
}

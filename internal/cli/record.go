package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/runnerr0/statkeep/internal/storage"
)

// Execute implements the go-flags Commander interface for RecordCommand.
func (c *RecordCommand) Execute(args []string) error {
	if c.Domain == "" {
		return errors.New("--domain is required for record command")
	}

	cleanup, err := c.prepare(true)
	if err != nil {
		return err
	}
	defer cleanup()

	if !c.cfg.Statistics.Enabled {
		return errors.New("statistics collection is disabled")
	}

	q := &storage.Query{Domain: c.Domain, Client: c.Client}
	if err := c.store.AddQuery(c.ctx, q); err != nil {
		if errors.Is(err, storage.ErrIgnored) {
			return fmt.Errorf("domain %q is on the ignored list", q.Domain)
		}
		return fmt.Errorf("recording query: %w", err)
	}

	c.log.WithField("domain", q.Domain).Debug("query recorded")

	if c.jsonOutput() {
		return writeJSON(map[string]interface{}{
			"id":     q.ID,
			"domain": q.Domain,
			"client": q.Client,
			"ts":     q.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	fmt.Printf("Recorded query %s for %s\n", q.ID, q.Domain)
	return nil
}

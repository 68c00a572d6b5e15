package cli

import (
	"fmt"
	"time"

	"github.com/runnerr0/statkeep/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version        string      `json:"version"`
	Enabled        bool        `json:"enabled"`
	IntervalHours  int64       `json:"interval_hours"`
	Retention      string      `json:"retention"`
	Custom         bool        `json:"custom"`
	IgnoredDomains []string    `json:"ignored_domains"`
	PruneSchedule  string      `json:"prune_schedule"`
	TotalQueries   int64       `json:"total_queries"`
	OldestQuery    string      `json:"oldest_query,omitempty"`
	NewestQuery    string      `json:"newest_query,omitempty"`
	TopDomains     []countJSON `json:"top_domains"`
	TopClients     []countJSON `json:"top_clients"`
}

type countJSON struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cleanup, err := c.prepare(true)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := c.store.GetStats(c.ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if c.jsonOutput() {
		return c.printJSON(stats)
	}
	return c.printHuman(stats)
}

func (c *StatusCommand) printHuman(stats *storage.Stats) error {
	v := c.formValues()

	collection := "disabled"
	if v.Enabled {
		collection = "enabled"
	}

	fmt.Println("Statistics Status")
	fmt.Println("=================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Collection:    %s\n", collection)
	fmt.Printf("Retention:     %s\n", retentionLabel(v))
	fmt.Printf("Ignored:       %d domains\n", len(v.IgnoredDomains()))
	if c.cfg.Retention.PruneSchedule != "" {
		fmt.Printf("Schedule:      %s\n", c.cfg.Retention.PruneSchedule)
	}
	fmt.Printf("Queries:       %s\n", formatNumber(stats.TotalQueries))

	if stats.TotalQueries > 0 {
		fmt.Printf("Oldest:        %s\n", stats.OldestQuery.Local().Format("2006-01-02 15:04"))
		fmt.Printf("Newest:        %s\n", stats.NewestQuery.Local().Format("2006-01-02 15:04"))
	}

	printTop("Top Domains:", stats.TopDomains)
	printTop("Top Clients:", stats.TopClients)

	return nil
}

func printTop(title string, entries []storage.TopEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(title)
	for _, e := range entries {
		fmt.Printf("  %-30s %s\n", e.Name, formatNumber(e.Count))
	}
}

func (c *StatusCommand) printJSON(stats *storage.Stats) error {
	v := c.formValues()

	out := statusJSON{
		Version:        c.version,
		Enabled:        v.Enabled,
		IntervalHours:  v.IntervalHours(),
		Retention:      retentionLabel(v),
		Custom:         v.IsCustom(),
		IgnoredDomains: v.IgnoredDomains(),
		PruneSchedule:  c.cfg.Retention.PruneSchedule,
		TotalQueries:   stats.TotalQueries,
		TopDomains:     toCountJSON(stats.TopDomains),
		TopClients:     toCountJSON(stats.TopClients),
	}

	if stats.TotalQueries > 0 {
		out.OldestQuery = stats.OldestQuery.UTC().Format(time.RFC3339)
		out.NewestQuery = stats.NewestQuery.UTC().Format(time.RFC3339)
	}

	return writeJSON(out)
}

func toCountJSON(entries []storage.TopEntry) []countJSON {
	out := make([]countJSON, len(entries))
	for i, e := range entries {
		out[i] = countJSON{Name: e.Name, Count: e.Count}
	}
	return out
}

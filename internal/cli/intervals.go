package cli

import (
	"fmt"

	"github.com/runnerr0/statkeep/internal/retention"
)

type intervalJSON struct {
	Days  int64  `json:"days"`
	Title string `json:"title"`
}

type intervalsJSON struct {
	Presets     []intervalJSON `json:"presets"`
	CustomTitle string         `json:"custom_title"`
	CustomMin   int64          `json:"custom_min_hours"`
	CustomMax   int64          `json:"custom_max_hours"`
}

// Execute implements the go-flags Commander interface for IntervalsCommand.
func (c *IntervalsCommand) Execute(args []string) error {
	out := intervalsJSON{
		CustomTitle: retention.Title(retention.Custom),
		CustomMin:   retention.RangeMin,
		CustomMax:   retention.RangeMax,
	}
	for _, p := range retention.Presets {
		out.Presets = append(out.Presets, intervalJSON{Days: p / retention.Day, Title: retention.Title(p)})
	}

	if c.jsonOutput() {
		return writeJSON(out)
	}

	fmt.Println("Retention presets (--interval DAYS):")
	for _, p := range out.Presets {
		fmt.Printf("  %-4d %s\n", p.Days, p.Title)
	}
	fmt.Printf("%s (--custom-hours N): %d to %d hours\n", out.CustomTitle, out.CustomMin, out.CustomMax)

	return nil
}

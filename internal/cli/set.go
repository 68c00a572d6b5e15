package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/runnerr0/statkeep/internal/config"
	"github.com/runnerr0/statkeep/internal/retention"
)

// Execute implements the go-flags Commander interface for SetCommand.
func (c *SetCommand) Execute(args []string) error {
	if c.Enable && c.Disable {
		return errors.New("--enable and --disable are mutually exclusive")
	}
	if c.Interval != nil && c.CustomHours != "" {
		return errors.New("--interval and --custom-hours are mutually exclusive")
	}

	cleanup, err := c.prepare(true)
	if err != nil {
		return err
	}
	defer cleanup()

	form := retention.NewForm(retention.Props{
		InitialValues: c.formValues(),
		OnSubmit:      c.save,
	})

	if err := c.apply(form); err != nil {
		return err
	}

	if !form.CanSubmit() {
		return fmt.Errorf("custom retention must be a whole number of hours between %d and %d",
			retention.RangeMin, retention.RangeMax)
	}

	return form.Submit(c.ctx)
}

// apply feeds the flags into form the way a user would edit the fields.
func (c *SetCommand) apply(form *retention.Form) error {
	switch {
	case c.Enable:
		form.SetEnabled(true)
	case c.Disable:
		form.SetEnabled(false)
	}

	if c.Interval != nil {
		days := *c.Interval
		if err := form.SelectPreset(int64(days) * retention.Day); err != nil {
			return fmt.Errorf("--interval %d: %w (choose 1, 7, 30 or 90)", days, err)
		}
	}
	if c.CustomHours != "" {
		form.SelectCustom()
		form.SetCustomInterval(c.CustomHours)
	}

	if !c.ClearIgnored && c.IgnoredFile == "" && len(c.Ignore) == 0 {
		return nil
	}

	raw := form.Values().Ignored
	if c.ClearIgnored {
		raw = ""
	}
	if c.IgnoredFile != "" {
		data, err := os.ReadFile(c.IgnoredFile)
		if err != nil {
			return fmt.Errorf("reading ignored file: %w", err)
		}
		raw = string(data)
	}
	if len(c.Ignore) > 0 {
		raw = raw + "\n" + strings.Join(c.Ignore, "\n")
	}

	form.SetIgnored(raw)
	form.BlurIgnored(form.Values().Ignored)

	return nil
}

// save persists submitted values to the config file.
func (c *SetCommand) save(ctx context.Context, v retention.Values) error {
	c.cfg.Statistics = config.StatisticsConfig{
		Enabled:       v.Enabled,
		IntervalHours: v.IntervalHours(),
		Ignored:       v.IgnoredDomains(),
	}
	if c.cfgPath != "" {
		if err := config.Save(c.cfgPath, c.cfg); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
	}

	detail := fmt.Sprintf("enabled=%t interval_hours=%d ignored=%d",
		v.Enabled, v.IntervalHours(), len(c.cfg.Statistics.Ignored))
	if c.store != nil {
		c.store.SetIgnored(c.cfg.Statistics.Ignored)
		if err := c.store.RecordAudit(ctx, "settings_saved", detail); err != nil {
			return err
		}
	}

	c.log.WithFields(logrus.Fields{
		"enabled":        v.Enabled,
		"interval_hours": v.IntervalHours(),
		"ignored":        len(c.cfg.Statistics.Ignored),
	}).Info("statistics settings saved")

	if c.jsonOutput() {
		return writeJSON(map[string]interface{}{
			"enabled":         v.Enabled,
			"interval_hours":  v.IntervalHours(),
			"retention":       retentionLabel(v),
			"ignored_domains": c.cfg.Statistics.Ignored,
		})
	}

	fmt.Println("Saved statistics settings.")
	fmt.Printf("  Collection: %t\n", v.Enabled)
	fmt.Printf("  Retention:  %s\n", retentionLabel(v))
	fmt.Printf("  Ignored:    %d domains\n", len(c.cfg.Statistics.Ignored))
	return nil
}

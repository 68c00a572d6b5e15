package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/runnerr0/statkeep/internal/clients"
	"github.com/runnerr0/statkeep/internal/config"
)

type clientJSON struct {
	Name                  string   `json:"name"`
	Upstreams             []string `json:"upstreams"`
	UpstreamsCacheEnabled bool     `json:"upstreams_cache_enabled"`
	UpstreamsCacheSize    uint32   `json:"upstreams_cache_size"`
}

func toClientJSON(cc config.ClientConfig) clientJSON {
	upstreams := cc.Upstreams
	if upstreams == nil {
		upstreams = []string{}
	}
	return clientJSON{
		Name:                  cc.Name,
		Upstreams:             upstreams,
		UpstreamsCacheEnabled: cc.UpstreamsCacheEnabled,
		UpstreamsCacheSize:    cc.UpstreamsCacheSize,
	}
}

// Execute implements the go-flags Commander interface for ClientSetCommand.
func (c *ClientSetCommand) Execute(args []string) error {
	if c.Name == "" {
		return errors.New("--name is required for client set command")
	}
	if c.CacheEnable && c.CacheDisable {
		return errors.New("--cache-enable and --cache-disable are mutually exclusive")
	}

	cleanup, err := c.prepare(true)
	if err != nil {
		return err
	}
	defer cleanup()

	var initial clients.Values
	if existing := c.cfg.Client(c.Name); existing != nil {
		initial = clients.FromSettings(existing.Upstreams, existing.UpstreamsCacheEnabled, existing.UpstreamsCacheSize)
	}

	form := clients.NewForm(clients.Props{
		InitialValues: initial,
		OnSubmit:      c.save,
	})

	if err := c.apply(form); err != nil {
		return err
	}

	if !form.CanSubmit() {
		return fmt.Errorf("an enabled upstream cache needs --cache-size between %d and %d",
			clients.CacheSizeMin, clients.CacheSizeMax)
	}

	return form.Submit(c.ctx)
}

func (c *ClientSetCommand) apply(form *clients.Form) error {
	switch {
	case c.CacheEnable:
		form.SetCacheEnabled(true)
	case c.CacheDisable:
		form.SetCacheEnabled(false)
	}

	if c.CacheSize != "" {
		form.SetCacheSize(c.CacheSize)
		if form.Values().CacheSize == nil {
			return fmt.Errorf("--cache-size %q: must be a whole number between %d and %d",
				c.CacheSize, clients.CacheSizeMin, clients.CacheSizeMax)
		}
	}

	if !c.ClearUpstreams && c.UpstreamsFile == "" && len(c.Upstream) == 0 {
		return nil
	}

	raw := form.Values().Upstreams
	if c.ClearUpstreams {
		raw = ""
	}
	if c.UpstreamsFile != "" {
		data, err := os.ReadFile(c.UpstreamsFile)
		if err != nil {
			return fmt.Errorf("reading upstreams file: %w", err)
		}
		raw = string(data)
	}
	if len(c.Upstream) > 0 {
		raw = raw + "\n" + strings.Join(c.Upstream, "\n")
	}

	form.SetUpstreams(raw)
	form.BlurUpstreams(form.Values().Upstreams)

	return nil
}

func (c *ClientSetCommand) save(ctx context.Context, v clients.Values) error {
	cc := config.ClientConfig{
		Name:                  c.Name,
		Upstreams:             v.UpstreamList(),
		UpstreamsCacheEnabled: v.CacheEnabled,
		UpstreamsCacheSize:    v.CacheSizeOrZero(),
	}
	c.cfg.SetClient(cc)
	if c.cfgPath != "" {
		if err := config.Save(c.cfgPath, c.cfg); err != nil {
			return fmt.Errorf("saving client settings: %w", err)
		}
	}

	if c.store != nil {
		detail := fmt.Sprintf("client=%s upstreams=%d cache_enabled=%t cache_size=%d",
			cc.Name, len(cc.Upstreams), cc.UpstreamsCacheEnabled, cc.UpstreamsCacheSize)
		if err := c.store.RecordAudit(ctx, "client_upstreams_saved", detail); err != nil {
			return err
		}
	}

	c.log.WithFields(logrus.Fields{
		"client":     cc.Name,
		"upstreams":  len(cc.Upstreams),
		"cache":      cc.UpstreamsCacheEnabled,
		"cache_size": cc.UpstreamsCacheSize,
	}).Info("client upstream settings saved")

	if c.jsonOutput() {
		return writeJSON(toClientJSON(cc))
	}

	fmt.Printf("Saved upstream settings for %s.\n", cc.Name)
	printClient(cc)
	return nil
}

// Execute implements the go-flags Commander interface for ClientListCommand.
func (c *ClientListCommand) Execute(args []string) error {
	cleanup, err := c.prepare(false)
	if err != nil {
		return err
	}
	defer cleanup()

	if c.jsonOutput() {
		out := make([]clientJSON, len(c.cfg.Clients))
		for i, cc := range c.cfg.Clients {
			out[i] = toClientJSON(cc)
		}
		return writeJSON(out)
	}

	if len(c.cfg.Clients) == 0 {
		fmt.Println("No clients configured.")
		return nil
	}
	for i, cc := range c.cfg.Clients {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(cc.Name)
		printClient(cc)
	}
	return nil
}

func printClient(cc config.ClientConfig) {
	if len(cc.Upstreams) == 0 {
		fmt.Println("  Upstreams:  (global)")
	} else {
		fmt.Printf("  Upstreams:  %s\n", strings.Join(cc.Upstreams, ", "))
	}
	cache := "disabled"
	if cc.UpstreamsCacheEnabled {
		cache = fmt.Sprintf("enabled, %s bytes", formatNumber(int64(cc.UpstreamsCacheSize)))
	}
	fmt.Printf("  Cache:      %s\n", cache)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/runnerr0/statkeep/internal/retention"
)

// Default config file path.
const DefaultConfigPath = "~/.config/statkeep/config.yaml"

// Config holds all statkeep configuration.
type Config struct {
	Statistics StatisticsConfig `yaml:"statistics"`
	Retention  RetentionConfig  `yaml:"retention"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
	Clients    []ClientConfig   `yaml:"clients"`
}

// StatisticsConfig is what the settings form edits.
type StatisticsConfig struct {
	Enabled       bool     `yaml:"enabled"`
	IntervalHours int64    `yaml:"interval_hours"`
	Ignored       []string `yaml:"ignored"`
}

// ClientConfig holds the upstream DNS settings of one persistent client.
type ClientConfig struct {
	Name                  string   `yaml:"name"`
	Upstreams             []string `yaml:"upstreams"`
	UpstreamsCacheEnabled bool     `yaml:"upstreams_cache_enabled"`
	UpstreamsCacheSize    uint32   `yaml:"upstreams_cache_size"`
}

type RetentionConfig struct {
	// PruneSchedule is a standard five-field cron expression. Empty
	// disables scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule"`
	// MetricsFile, when set, receives pruning metrics in the node_exporter
	// textfile format after every scheduled run.
	MetricsFile string `yaml:"metrics_file"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Statistics.Ignored == nil {
		cfg.Statistics.Ignored = []string{}
	}
	if cfg.Clients == nil {
		cfg.Clients = []ClientConfig{}
	}

	return cfg, nil
}

// Validate checks values that the rest of statkeep relies on.
func (c *Config) Validate() error {
	var errs []error

	if h := c.Statistics.IntervalHours; !retention.ValidCustomInterval(h) {
		errs = append(errs, fmt.Errorf("statistics.interval_hours: %d is outside [%d, %d]",
			h, retention.RangeMin, retention.RangeMax))
	}
	if c.Storage.SQLiteFile == "" {
		errs = append(errs, errors.New("storage.sqlite_file: must not be empty"))
	}
	if c.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(c.Retention.PruneSchedule); err != nil {
			errs = append(errs, fmt.Errorf("retention.prune_schedule: %w", err))
		}
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	seen := make(map[string]struct{}, len(c.Clients))
	for i, cl := range c.Clients {
		if cl.Name == "" {
			errs = append(errs, fmt.Errorf("clients[%d].name: must not be empty", i))
			continue
		}
		if _, dup := seen[cl.Name]; dup {
			errs = append(errs, fmt.Errorf("clients[%d].name: duplicate client %q", i, cl.Name))
		}
		seen[cl.Name] = struct{}{}
	}

	return errors.Join(errs...)
}

// Client returns the settings of the named client, or nil.
func (c *Config) Client(name string) *ClientConfig {
	for i := range c.Clients {
		if c.Clients[i].Name == name {
			return &c.Clients[i]
		}
	}
	return nil
}

// SetClient replaces the settings of cc.Name, adding the client if needed.
func (c *Config) SetClient(cc ClientConfig) {
	if existing := c.Client(cc.Name); existing != nil {
		*existing = cc
		return
	}
	c.Clients = append(c.Clients, cc)
}

// DBPath returns the expanded path of the statistics database.
func (c *Config) DBPath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// MetricsPath returns the expanded metrics textfile path, or "" when
// metrics output is off.
func (c *Config) MetricsPath() (string, error) {
	if c.Retention.MetricsFile == "" {
		return "", nil
	}
	return expandPath(c.Retention.MetricsFile)
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// ResolvePath returns path expanded, or the expanded default path when path
// is empty.
func ResolvePath(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	return expandPath(path)
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := ResolvePath("")
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return Load(path)
}

// Save writes cfg to path. The file is replaced atomically.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

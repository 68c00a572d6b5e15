package cli

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/runnerr0/statkeep/internal/config"
	"github.com/runnerr0/statkeep/internal/storage"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// deps carries what a command needs at run time. Tests fill it directly;
// otherwise prepare loads it from the config file.
type deps struct {
	globals *GlobalFlags
	version string

	cfg     *config.Config
	cfgPath string
	store   *storage.SQLiteStore
	stdin   io.Reader
	log     *logrus.Entry
	ctx     context.Context
}

// StatusCommand shows statistics settings and collected data.
type StatusCommand struct {
	deps `no-flag:"true"`
}

// IntervalsCommand lists the retention choices.
type IntervalsCommand struct {
	deps `no-flag:"true"`
}

// SetCommand changes statistics settings.
type SetCommand struct {
	Enable       bool     `long:"enable" description:"Enable statistics collection"`
	Disable      bool     `long:"disable" description:"Disable statistics collection"`
	Interval     *int     `long:"interval" description:"Retention preset in days: 1, 7, 30 or 90"`
	CustomHours  string   `long:"custom-hours" description:"Custom retention in hours (1-8760)"`
	Ignore       []string `long:"ignore" description:"Add a domain to the ignored list (repeatable)"`
	IgnoredFile  string   `long:"ignored-file" description:"Replace the ignored list with the lines of a file"`
	ClearIgnored bool     `long:"clear-ignored" description:"Empty the ignored list before adding --ignore domains"`

	deps `no-flag:"true"`
}

// RecordCommand records one DNS query.
type RecordCommand struct {
	Domain string `long:"domain" description:"Queried domain (required)"`
	Client string `long:"client" description:"Client address or name"`

	deps `no-flag:"true"`
}

// PruneCommand removes queries outside the retention period.
type PruneCommand struct {
	OlderThan string `long:"older-than" description:"Override retention period (e.g., 30d)"`
	DryRun    bool   `long:"dry-run" description:"Show what would be pruned without deleting"`
	Force     bool   `long:"force" description:"Skip confirmation prompt"`

	deps `no-flag:"true"`
}

// ClearCommand deletes all collected statistics.
type ClearCommand struct {
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	deps `no-flag:"true"`
}

// DaemonCommand prunes on the configured schedule until interrupted.
type DaemonCommand struct {
	Schedule    string `long:"schedule" description:"Override the cron prune schedule"`
	MetricsFile string `long:"metrics-file" description:"Write pruning metrics to this node_exporter textfile"`

	deps `no-flag:"true"`
}

// ClientCommand groups the per-client upstream commands.
type ClientCommand struct{}

// ClientSetCommand changes a client's upstream DNS settings.
type ClientSetCommand struct {
	Name           string   `long:"name" description:"Client name (required)"`
	Upstream       []string `long:"upstream" description:"Add an upstream DNS server (repeatable)"`
	UpstreamsFile  string   `long:"upstreams-file" description:"Replace the upstreams with the lines of a file"`
	ClearUpstreams bool     `long:"clear-upstreams" description:"Empty the upstream list before adding --upstream servers"`
	CacheEnable    bool     `long:"cache-enable" description:"Enable the upstream DNS cache"`
	CacheDisable   bool     `long:"cache-disable" description:"Disable the upstream DNS cache"`
	CacheSize      string   `long:"cache-size" description:"Upstream DNS cache size in bytes (0-4294967295)"`

	deps `no-flag:"true"`
}

// ClientListCommand lists the configured clients.
type ClientListCommand struct {
	deps `no-flag:"true"`
}

package cli

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/runnerr0/statkeep/internal/config"
	"github.com/runnerr0/statkeep/internal/retention"
	"github.com/runnerr0/statkeep/internal/storage"
)

// prepare fills whatever deps tests did not inject. The returned cleanup
// closes a store opened here.
func (d *deps) prepare(withStore bool) (func(), error) {
	cleanup := func() {}

	if d.globals == nil {
		d.globals = &GlobalFlags{}
	}
	if d.ctx == nil {
		d.ctx = context.Background()
	}
	if d.stdin == nil {
		d.stdin = os.Stdin
	}

	if d.cfg == nil {
		path, err := config.ResolvePath(d.globals.Config)
		if err != nil {
			return nil, err
		}
		cfg, err := config.LoadOrCreateAt(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
		d.cfg, d.cfgPath = cfg, path
	}

	if d.log == nil {
		d.log = newLogger(d.cfg.Logging, d.globals.Verbose)
	}

	if withStore && d.store == nil {
		store, db, err := openStore(d.cfg)
		if err != nil {
			return nil, err
		}
		d.store = store
		cleanup = func() {
			store.Close()
			db.Close()
			d.store = nil
		}
	}
	if d.store != nil {
		d.store.SetIgnored(d.cfg.Statistics.Ignored)
	}

	return cleanup, nil
}

func (d *deps) jsonOutput() bool {
	return d.globals != nil && d.globals.JSON
}

// formValues returns the stored settings as form values.
func (d *deps) formValues() retention.Values {
	s := d.cfg.Statistics
	return retention.FromSettings(s.Enabled, s.IntervalHours, s.Ignored)
}

// confirm prints prompt and reads one line from stdin.
func (d *deps) confirm(prompt string) (string, bool) {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(d.stdin)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

// openStore opens the configured database, runs migrations, and returns a
// ready-to-use store and the underlying *sql.DB.
func openStore(cfg *config.Config) (*storage.SQLiteStore, *sql.DB, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}

// newLogger builds the diagnostics logger. Command results go to stdout;
// logs go to stderr.
func newLogger(cfg config.LoggingConfig, verbose bool) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logrus.NewEntry(l)
}

// writeJSON prints v as indented JSON.
func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// retentionLabel describes the effective retention of v.
func retentionLabel(v retention.Values) string {
	if v.IsCustom() {
		return fmt.Sprintf("%s (custom)", formatDurationHuman(time.Duration(v.IntervalHours())*time.Hour))
	}
	return retention.Title(v.Interval)
}

// parseDuration parses a human-friendly duration string like "30d", "7d", "24h", "2w".
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	switch suffix {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	default:
		return 0, fmt.Errorf("invalid duration: %q (use d, h, w, or m suffix)", s)
	}
}

// formatDurationHuman formats a duration into a human-readable string like
// "30 days". Durations that are not whole days are shown in hours.
func formatDurationHuman(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours > 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

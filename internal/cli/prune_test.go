package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/statkeep/internal/storage"
)

// setupPruneTest seeds old queries two days back and recent ones an hour
// back, against the default 24 hour retention.
func setupPruneTest(t *testing.T, oldCount, recentCount int) (*PruneCommand, *storage.SQLiteStore) {
	t.Helper()

	d := newTestDeps(t)
	seedQueries(t, d.store, oldCount, 48*time.Hour)
	seedQueries(t, d.store, recentCount, time.Hour)

	return &PruneCommand{deps: d}, d.store
}

func totalQueries(t *testing.T, store *storage.SQLiteStore) int64 {
	t.Helper()
	stats, err := store.GetStats(context.Background())
	require.NoError(t, err)
	return stats.TotalQueries
}

func TestPrune_DryRun(t *testing.T) {
	cmd, store := setupPruneTest(t, 3, 2)
	cmd.DryRun = true

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "[DRY RUN] Would prune 3 queries older than 1 day.")
	assert.Equal(t, int64(5), totalQueries(t, store))
}

func TestPrune_Force(t *testing.T) {
	cmd, store := setupPruneTest(t, 3, 2)
	cmd.Force = true

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Pruned 3 queries older than 1 day.")
	assert.Equal(t, int64(2), totalQueries(t, store))

	entries, err := store.AuditLog(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "statistics_pruned", entries[0].Action)
	assert.Contains(t, entries[0].Detail, "deleted=3")
}

func TestPrune_ConfirmYes(t *testing.T) {
	cmd, store := setupPruneTest(t, 2, 1)
	cmd.stdin = strings.NewReader("y\n")

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Prune 2 queries older than 1 day? [y/N]: ")
	assert.Contains(t, output, "Pruned 2 queries")
	assert.Equal(t, int64(1), totalQueries(t, store))
}

func TestPrune_ConfirmNo(t *testing.T) {
	cmd, store := setupPruneTest(t, 2, 1)
	cmd.stdin = strings.NewReader("n\n")

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Aborted.")
	assert.Equal(t, int64(3), totalQueries(t, store))
}

func TestPrune_NoInputAborts(t *testing.T) {
	cmd, store := setupPruneTest(t, 2, 0)

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Aborted.")
	assert.Equal(t, int64(2), totalQueries(t, store))
}

func TestPrune_NothingToPrune(t *testing.T) {
	cmd, _ := setupPruneTest(t, 0, 2)

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "No queries to prune (older than 1 day).")
}

func TestPrune_OlderThanOverride(t *testing.T) {
	d := newTestDeps(t)
	seedQueries(t, d.store, 2, 10*24*time.Hour)
	seedQueries(t, d.store, 3, 48*time.Hour)
	cmd := &PruneCommand{deps: d, OlderThan: "7d", Force: true}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Pruned 2 queries older than 7 days.")
	assert.Equal(t, int64(3), totalQueries(t, d.store))
}

func TestPrune_CustomRetentionFromConfig(t *testing.T) {
	d := newTestDeps(t)
	d.cfg.Statistics.IntervalHours = 36
	seedQueries(t, d.store, 2, 48*time.Hour)
	seedQueries(t, d.store, 1, 24*time.Hour)
	cmd := &PruneCommand{deps: d, Force: true}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Pruned 2 queries older than 36 hours.")
}

func TestPrune_InvalidOlderThan(t *testing.T) {
	for _, in := range []string{"abc", "0d", "-3d", "5y", "d"} {
		cmd := &PruneCommand{deps: newTestDeps(t), OlderThan: in}
		err := cmd.Execute(nil)
		require.Error(t, err, in)
		assert.Contains(t, err.Error(), "invalid duration", in)
	}
}

func TestPrune_JSONRequiresForceOrDryRun(t *testing.T) {
	cmd, _ := setupPruneTest(t, 1, 0)
	cmd.globals.JSON = true

	err := cmd.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--json requires --force or --dry-run")
}

func TestPrune_JSON(t *testing.T) {
	cmd, _ := setupPruneTest(t, 4, 1)
	cmd.globals.JSON = true
	cmd.Force = true

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	var out struct {
		Pruned    int64  `json:"pruned"`
		DryRun    bool   `json:"dry_run"`
		OlderThan string `json:"older_than"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(output)), &out), output)
	assert.Equal(t, int64(4), out.Pruned)
	assert.False(t, out.DryRun)
	assert.Equal(t, "1 day", out.OlderThan)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30d", 30 * 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"15m", 15 * time.Minute},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatDurationHuman(t *testing.T) {
	assert.Equal(t, "1 day", formatDurationHuman(24*time.Hour))
	assert.Equal(t, "90 days", formatDurationHuman(90*24*time.Hour))
	assert.Equal(t, "36 hours", formatDurationHuman(36*time.Hour))
	assert.Equal(t, "1 hour", formatDurationHuman(time.Hour))
	assert.Equal(t, "30m0s", formatDurationHuman(30*time.Minute))
}

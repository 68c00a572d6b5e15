package cli

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_EmptyDB(t *testing.T) {
	cmd := &StatusCommand{deps: newTestDeps(t)}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Statistics Status")
	assert.Contains(t, output, "Collection:    enabled")
	assert.Contains(t, output, "Retention:     24 hours")
	assert.Contains(t, output, "Ignored:       0 domains")
	assert.Contains(t, output, "Queries:       0")
	assert.NotContains(t, output, "Top Domains:")
}

func TestStatus_WithData(t *testing.T) {
	d := newTestDeps(t)
	d.cfg.Statistics.IntervalHours = 90 * 24
	d.cfg.Statistics.Ignored = []string{"a.com", "b.com"}
	seedQueries(t, d.store, 3, time.Hour)
	cmd := &StatusCommand{deps: d}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Retention:     90 days")
	assert.Contains(t, output, "Ignored:       2 domains")
	assert.Contains(t, output, "Queries:       3")
	assert.Contains(t, output, "Top Domains:")
	assert.Contains(t, output, "d0.example.com")
	assert.Contains(t, output, "Top Clients:")
	assert.Contains(t, output, "192.0.2.1")
}

func TestStatus_CustomRetention(t *testing.T) {
	d := newTestDeps(t)
	d.cfg.Statistics.IntervalHours = 36
	d.cfg.Statistics.Enabled = false
	cmd := &StatusCommand{deps: d}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Collection:    disabled")
	assert.Contains(t, output, "Retention:     36 hours (custom)")
}

func TestStatus_JSON(t *testing.T) {
	d := newTestDeps(t)
	d.globals.JSON = true
	d.cfg.Statistics.IntervalHours = 7 * 24
	d.cfg.Statistics.Ignored = []string{"a.com"}
	seedQueries(t, d.store, 2, time.Hour)
	cmd := &StatusCommand{deps: d}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	var out statusJSON
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(output)), &out), output)
	assert.Equal(t, "test", out.Version)
	assert.True(t, out.Enabled)
	assert.Equal(t, int64(168), out.IntervalHours)
	assert.Equal(t, "7 days", out.Retention)
	assert.False(t, out.Custom)
	assert.Equal(t, []string{"a.com"}, out.IgnoredDomains)
	assert.Equal(t, int64(2), out.TotalQueries)
	assert.NotEmpty(t, out.OldestQuery)
	assert.Len(t, out.TopDomains, 2)
	require.Len(t, out.TopClients, 1)
	assert.Equal(t, int64(2), out.TopClients[0].Count)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,234", formatNumber(1234))
	assert.Equal(t, "123,456", formatNumber(123456))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

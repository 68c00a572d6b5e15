package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/statkeep/internal/config"
)

func runClientSet(t *testing.T, cmd *ClientSetCommand) string {
	t.Helper()
	return captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})
}

func TestClientSet_NewClient(t *testing.T) {
	d := newTestDeps(t)
	cmd := &ClientSetCommand{
		deps:        d,
		Name:        "laptop",
		Upstream:    []string{" tls://dns.example ", "", "1.1.1.1"},
		CacheEnable: true,
		CacheSize:   "4096",
	}

	output := runClientSet(t, cmd)

	assert.Contains(t, output, "Saved upstream settings for laptop.")
	assert.Contains(t, output, "Upstreams:  tls://dns.example, 1.1.1.1")
	assert.Contains(t, output, "Cache:      enabled, 4,096 bytes")

	saved, err := config.Load(d.cfgPath)
	require.NoError(t, err)
	cl := saved.Client("laptop")
	require.NotNil(t, cl)
	assert.Equal(t, []string{"tls://dns.example", "1.1.1.1"}, cl.Upstreams)
	assert.True(t, cl.UpstreamsCacheEnabled)
	assert.Equal(t, uint32(4096), cl.UpstreamsCacheSize)

	entries, err := d.store.AuditLog(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "client_upstreams_saved", entries[0].Action)
}

func TestClientSet_EditsExistingClient(t *testing.T) {
	d := newTestDeps(t)
	d.cfg.SetClient(config.ClientConfig{
		Name:                  "laptop",
		Upstreams:             []string{"1.1.1.1"},
		UpstreamsCacheEnabled: true,
		UpstreamsCacheSize:    1024,
	})

	runClientSet(t, &ClientSetCommand{deps: d, Name: "laptop", Upstream: []string{"9.9.9.9"}})

	cl := d.cfg.Client("laptop")
	require.NotNil(t, cl)
	assert.Equal(t, []string{"1.1.1.1", "9.9.9.9"}, cl.Upstreams)
	assert.True(t, cl.UpstreamsCacheEnabled)
	assert.Equal(t, uint32(1024), cl.UpstreamsCacheSize)
	assert.Len(t, d.cfg.Clients, 1)
}

func TestClientSet_ClearAndFile(t *testing.T) {
	d := newTestDeps(t)
	d.cfg.SetClient(config.ClientConfig{Name: "tv", Upstreams: []string{"1.1.1.1"}})
	path := filepath.Join(t.TempDir(), "upstreams.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n quic://dns.example \n\n"), 0644))

	runClientSet(t, &ClientSetCommand{deps: d, Name: "tv", UpstreamsFile: path})
	assert.Equal(t, []string{"quic://dns.example"}, d.cfg.Client("tv").Upstreams)

	runClientSet(t, &ClientSetCommand{deps: d, Name: "tv", ClearUpstreams: true})
	assert.Empty(t, d.cfg.Client("tv").Upstreams)
}

func TestClientSet_EnabledCacheNeedsSize(t *testing.T) {
	d := newTestDeps(t)

	err := (&ClientSetCommand{deps: d, Name: "laptop", CacheEnable: true}).Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs --cache-size")
	assert.Nil(t, d.cfg.Client("laptop"))
}

func TestClientSet_CacheSizeOutOfRange(t *testing.T) {
	for _, in := range []string{"-1", "4294967296", "1.5", "lots"} {
		d := newTestDeps(t)
		err := (&ClientSetCommand{deps: d, Name: "laptop", CacheSize: in}).Execute(nil)
		require.Error(t, err, in)
		assert.Contains(t, err.Error(), "between 0 and 4294967295", in)
	}
}

func TestClientSet_CacheSizeBounds(t *testing.T) {
	d := newTestDeps(t)
	runClientSet(t, &ClientSetCommand{deps: d, Name: "a", CacheEnable: true, CacheSize: "0"})
	runClientSet(t, &ClientSetCommand{deps: d, Name: "b", CacheEnable: true, CacheSize: "4294967295"})

	assert.Equal(t, uint32(0), d.cfg.Client("a").UpstreamsCacheSize)
	assert.Equal(t, uint32(4294967295), d.cfg.Client("b").UpstreamsCacheSize)
}

func TestClientSet_FlagErrors(t *testing.T) {
	err := (&ClientSetCommand{deps: newTestDeps(t)}).Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name is required")

	err = (&ClientSetCommand{deps: newTestDeps(t), Name: "a", CacheEnable: true, CacheDisable: true}).Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestClientList(t *testing.T) {
	d := newTestDeps(t)
	output := captureOutput(t, func() {
		require.NoError(t, (&ClientListCommand{deps: d}).Execute(nil))
	})
	assert.Contains(t, output, "No clients configured.")

	d.cfg.SetClient(config.ClientConfig{Name: "laptop", Upstreams: []string{"1.1.1.1"}})
	d.cfg.SetClient(config.ClientConfig{Name: "tv"})
	output = captureOutput(t, func() {
		require.NoError(t, (&ClientListCommand{deps: d}).Execute(nil))
	})
	assert.Contains(t, output, "laptop\n  Upstreams:  1.1.1.1\n  Cache:      disabled")
	assert.Contains(t, output, "tv\n  Upstreams:  (global)")
}

func TestClientList_JSON(t *testing.T) {
	d := newTestDeps(t)
	d.globals.JSON = true
	d.cfg.SetClient(config.ClientConfig{Name: "tv", UpstreamsCacheEnabled: true, UpstreamsCacheSize: 10})

	output := captureOutput(t, func() {
		require.NoError(t, (&ClientListCommand{deps: d}).Execute(nil))
	})

	var out []clientJSON
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(output)), &out), output)
	require.Len(t, out, 1)
	assert.Equal(t, clientJSON{Name: "tv", Upstreams: []string{}, UpstreamsCacheEnabled: true, UpstreamsCacheSize: 10}, out[0])
}

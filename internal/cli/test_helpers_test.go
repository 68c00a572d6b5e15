package cli

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goflags "github.com/jessevdk/go-flags"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/statkeep/internal/config"
	"github.com/runnerr0/statkeep/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestDeps returns deps backed by an in-memory store and a config file
// in a temp dir.
func newTestDeps(t *testing.T) deps {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = dir
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.Save(cfgPath, cfg))

	logger, _ := test.NewNullLogger()

	return deps{
		globals: &GlobalFlags{},
		version: "test",
		cfg:     cfg,
		cfgPath: cfgPath,
		store:   store,
		stdin:   strings.NewReader(""),
		log:     logrus.NewEntry(logger),
		ctx:     context.Background(),
	}
}

// seedQueries records n queries of the given age.
func seedQueries(t *testing.T, store *storage.SQLiteStore, n int, age time.Duration) {
	t.Helper()
	for i := 0; i < n; i++ {
		q := &storage.Query{
			Domain:    fmt.Sprintf("d%d.example.com", i),
			Client:    "192.0.2.1",
			Timestamp: time.Now().Add(-age),
		}
		require.NoError(t, store.AddQuery(context.Background(), q))
	}
}

// parseOnly builds a parser whose commands are parsed but not executed.
func parseOnly(t *testing.T, args ...string) (*GlobalFlags, *commands) {
	t.Helper()
	p, globals, cmds := buildParser("test")
	p.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := p.ParseArgs(args)
	require.NoError(t, err)
	return globals, cmds
}

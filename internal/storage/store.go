package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/miekg/dns"
)

var (
	// ErrIgnored is returned by AddQuery for domains on the ignored list.
	ErrIgnored = errors.New("domain is ignored")

	// ErrEmptyDomain is returned by AddQuery for queries without a domain.
	ErrEmptyDomain = errors.New("domain is empty")

	// ErrInvalidDomain is returned by AddQuery for malformed domain names.
	ErrInvalidDomain = errors.New("domain name is invalid")
)

// Store defines the interface for statistics data operations.
type Store interface {
	AddQuery(ctx context.Context, q *Query) error
	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)
	PruneExpired(ctx context.Context, olderThan time.Time) (int64, error)
	PurgeAll(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	RecordAudit(ctx context.Context, action, detail string) error
	AuditLog(ctx context.Context, limit int) ([]AuditEntry, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	insertQuery *sql.Stmt
	insertAudit *sql.Stmt

	mu      sync.RWMutex
	ignored *ignoreList
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{
		db:      db,
		ignored: newIgnoreList(nil),
	}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertQuery, err = s.db.Prepare(`
		INSERT INTO queries (id, ts, domain, client) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.insertAudit, err = s.db.Prepare(`
		INSERT INTO audit_log (action, detail, ts) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}

	return nil
}

// SetIgnored replaces the ignored domain list.
func (s *SQLiteStore) SetIgnored(domains []string) {
	l := newIgnoreList(domains)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ignored = l
}

// IsIgnored reports whether queries for domain are dropped.
func (s *SQLiteStore) IsIgnored(domain string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ignored.match(domain)
}

// formatTimestamp is the stored timestamp format. Stored values compare
// correctly as strings.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05-07:00",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// AddQuery records q. The ID is generated and the domain normalized; a
// zero timestamp means now.
func (s *SQLiteStore) AddQuery(ctx context.Context, q *Query) error {
	q.Domain = normalizeDomain(q.Domain)
	if q.Domain == "" {
		return ErrEmptyDomain
	}
	if _, ok := dns.IsDomainName(q.Domain); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDomain, q.Domain)
	}
	if s.IsIgnored(q.Domain) {
		return fmt.Errorf("%w: %s", ErrIgnored, q.Domain)
	}

	q.ID = uuid.NewString()
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now()
	}

	_, err := s.insertQuery.ExecContext(ctx, q.ID, formatTimestamp(q.Timestamp), q.Domain, q.Client)
	if err != nil {
		return fmt.Errorf("insert query: %w", err)
	}

	return nil
}

// CountExpired returns the number of queries recorded before olderThan.
func (s *SQLiteStore) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM queries WHERE ts < ?", formatTimestamp(olderThan),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count expired: %w", err)
	}
	return n, nil
}

// PruneExpired deletes queries recorded before olderThan.
func (s *SQLiteStore) PruneExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM queries WHERE ts < ?", formatTimestamp(olderThan))
	if err != nil {
		return 0, fmt.Errorf("prune queries: %w", err)
	}

	return res.RowsAffected()
}

// PurgeAll deletes all recorded queries. The audit log is kept.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM queries"); err != nil {
		return fmt.Errorf("purge queries: %w", err)
	}
	return nil
}

// GetStats returns aggregate statistics about the recorded queries.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queries").Scan(&stats.TotalQueries)
	if err != nil {
		return nil, fmt.Errorf("count queries: %w", err)
	}

	// Oldest and newest (handle empty DB)
	if stats.TotalQueries > 0 {
		var oldestStr, newestStr string
		err = s.db.QueryRowContext(ctx, "SELECT MIN(ts), MAX(ts) FROM queries").Scan(&oldestStr, &newestStr)
		if err != nil {
			return nil, fmt.Errorf("query time range: %w", err)
		}
		stats.OldestQuery, _ = parseTimestamp(oldestStr)
		stats.NewestQuery, _ = parseTimestamp(newestStr)
	}

	stats.TopDomains, err = s.top(ctx, "domain")
	if err != nil {
		return nil, fmt.Errorf("top domains: %w", err)
	}

	stats.TopClients, err = s.top(ctx, "client")
	if err != nil {
		return nil, fmt.Errorf("top clients: %w", err)
	}

	return stats, nil
}

// top returns the ten most frequent values of column. column is never
// user input.
func (s *SQLiteStore) top(ctx context.Context, column string) ([]TopEntry, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %[1]s, COUNT(*) AS cnt FROM queries WHERE %[1]s != '' GROUP BY %[1]s ORDER BY cnt DESC, %[1]s LIMIT 10",
		column,
	))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []TopEntry{}
	for rows.Next() {
		var e TopEntry
		if err := rows.Scan(&e.Name, &e.Count); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// RecordAudit appends an entry to the audit log.
func (s *SQLiteStore) RecordAudit(ctx context.Context, action, detail string) error {
	if _, err := s.insertAudit.ExecContext(ctx, action, detail, formatTimestamp(time.Now())); err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

// AuditLog returns up to limit audit entries, newest first.
func (s *SQLiteStore) AuditLog(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT action, detail, ts FROM audit_log ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		var tsStr string
		if err := rows.Scan(&e.Action, &e.Detail, &tsStr); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Timestamp, _ = parseTimestamp(tsStr)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertQuery, s.insertAudit} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

package storage

import "time"

// Query is a single recorded DNS query.
type Query struct {
	ID        string
	Timestamp time.Time
	Domain    string
	Client    string
}

// Stats holds aggregate statistics about the recorded queries.
type Stats struct {
	TotalQueries int64
	OldestQuery  time.Time
	NewestQuery  time.Time
	TopDomains   []TopEntry
	TopClients   []TopEntry
}

// TopEntry pairs a domain or client with its query count.
type TopEntry struct {
	Name  string
	Count int64
}

// AuditEntry is one row of the settings audit log.
type AuditEntry struct {
	Action    string
	Detail    string
	Timestamp time.Time
}

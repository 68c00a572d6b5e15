package clients

import (
	"math"
	"strings"

	"github.com/runnerr0/statkeep/internal/retention"
)

// Bounds for the upstream cache size, in bytes.
const (
	CacheSizeMin uint64 = 0
	CacheSizeMax uint64 = math.MaxUint32
)

// Values is the state of a client's upstream DNS form.
type Values struct {
	// Upstreams holds one upstream address per line.
	Upstreams    string
	CacheEnabled bool
	// CacheSize is nil until a valid size has been entered.
	CacheSize *uint32
}

func (v Values) clone() Values {
	if v.CacheSize != nil {
		n := *v.CacheSize
		v.CacheSize = &n
	}
	return v
}

// UpstreamList splits the upstreams into normalized lines.
func (v Values) UpstreamList() []string {
	norm := retention.TrimLinesAndRemoveEmpty(v.Upstreams)
	if norm == "" {
		return []string{}
	}
	return strings.Split(norm, "\n")
}

// CacheSizeOrZero returns the entered cache size, or 0 when absent.
func (v Values) CacheSizeOrZero() uint32 {
	if v.CacheSize == nil {
		return 0
	}
	return *v.CacheSize
}

// FromSettings builds form values from stored client settings.
func FromSettings(upstreams []string, cacheEnabled bool, cacheSize uint32) Values {
	return Values{
		Upstreams:    strings.Join(upstreams, "\n"),
		CacheEnabled: cacheEnabled,
		CacheSize:    &cacheSize,
	}
}

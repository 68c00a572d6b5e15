package storage

import (
	"strings"

	"github.com/miekg/dns"
)

// ignoreList matches domains against the configured ignored list. Entries
// are exact names or "*." wildcards that match any subdomain.
type ignoreList struct {
	exact    map[string]struct{}
	suffixes []string
}

func newIgnoreList(domains []string) *ignoreList {
	l := &ignoreList{exact: make(map[string]struct{}, len(domains))}
	for _, d := range domains {
		d = normalizeDomain(d)
		if d == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(d, "*."); ok {
			if rest != "" {
				l.suffixes = append(l.suffixes, "."+rest)
			}
			continue
		}
		l.exact[d] = struct{}{}
	}
	return l
}

func (l *ignoreList) match(domain string) bool {
	domain = normalizeDomain(domain)
	if _, ok := l.exact[domain]; ok {
		return true
	}
	for _, s := range l.suffixes {
		if strings.HasSuffix(domain, s) {
			return true
		}
	}
	return false
}

// normalizeDomain returns the canonical name of d without the trailing
// root dot.
func normalizeDomain(d string) string {
	return strings.TrimSuffix(dns.CanonicalName(strings.TrimSpace(d)), ".")
}

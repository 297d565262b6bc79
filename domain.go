package fedcrawl

import (
	"strings"

	"golang.org/x/net/idna"
)

// Domain is a normalized host name, the identity key of every crawl registry.
type Domain string

// String returns the domain as a plain string.
func (d Domain) String() string {
	return string(d)
}

// ParseDomain normalizes a raw peer entry into a Domain.
// It lowercases, strips a leading scheme, anything after the host
// (path, query, trailing slash) and trailing dots, and validates the host with IDNA lookup
// rules. A numeric port is kept. Returns EINVALID for anything else.
func ParseDomain(raw string) (Domain, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "", Errorf(EINVALID, "empty domain in %q", raw)
	}

	host, port := s, ""
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		host, port = s[:i], s[i:]
		if !isPort(port[1:]) {
			return "", Errorf(EINVALID, "invalid port in domain %q", raw)
		}
	}
	host = strings.TrimRight(host, ".")
	if host == "" {
		return "", Errorf(EINVALID, "empty host in %q", raw)
	}
	if _, err := idna.Lookup.ToASCII(host); err != nil {
		return "", Errorf(EINVALID, "invalid domain %q: %v", raw, err)
	}
	return Domain(host + port), nil
}

func isPort(s string) bool {
	if s == "" || len(s) > 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExclusionFilter decides whether a domain is banned from crawling.
// A domain is excluded when it ends with any configured suffix pattern,
// compared case-insensitively. The zero value and a nil filter exclude nothing.
type ExclusionFilter struct {
	patterns []string
}

// NewExclusionFilter returns a filter for the given suffix patterns.
// Blank patterns are ignored.
func NewExclusionFilter(patterns ...string) *ExclusionFilter {
	f := &ExclusionFilter{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		f.patterns = append(f.patterns, p)
	}
	return f
}

// IsExcluded reports whether d matches any exclusion pattern.
func (f *ExclusionFilter) IsExcluded(d Domain) bool {
	if f == nil {
		return false
	}
	name := strings.ToLower(string(d))
	for _, p := range f.patterns {
		if strings.HasSuffix(name, p) {
			return true
		}
	}
	return false
}

// Patterns returns the normalized patterns in configuration order.
func (f *ExclusionFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}

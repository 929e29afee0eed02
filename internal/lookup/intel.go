package lookup

import (
	"strings"
	"sync"

	"qrguard/internal/bloom"
	"qrguard/internal/models"
)

// DefaultIntelFPR is the target false-positive rate the bundled denylist
// filter is sized for. False positives only cost an extra exact-set probe,
// so 1% keeps the filter small.
const DefaultIntelFPR = 0.01

// ThreatIntel is the two-stage known-bad domain lookup: a Bloom filter
// pre-filter backed by an exact set. The Bloom stage only ever short-circuits
// negatives; a positive must be confirmed against the exact set before it can
// affect a verdict. Built once, read-only afterwards.
type ThreatIntel struct {
	filter *bloom.Filter
	exact  map[string]struct{}
}

// NewThreatIntel builds a lookup over the given domains. Domains are
// normalized on insertion so probes and entries always compare in the same
// form. Construction fails only on impossible filter geometry.
func NewThreatIntel(domains []string, targetFPR float64) (*ThreatIntel, error) {
	filter, err := bloom.New(max(len(domains), 1), targetFPR)
	if err != nil {
		return nil, err
	}

	exact := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		n := NormalizeHost(d)
		if n == "" {
			continue
		}
		exact[n] = struct{}{}
		filter.Add(n)
	}

	return &ThreatIntel{filter: filter, exact: exact}, nil
}

var (
	defaultIntel     *ThreatIntel
	defaultIntelOnce sync.Once
)

// DefaultThreatIntel returns the lookup over the bundled denylist, built on
// first use and shared for the process lifetime.
func DefaultThreatIntel() *ThreatIntel {
	defaultIntelOnce.Do(func() {
		// The bundled list is a compile-time constant; geometry errors are
		// impossible here, so the error path reduces to an empty lookup.
		intel, err := NewThreatIntel(defaultDenylist, DefaultIntelFPR)
		if err != nil {
			intel = &ThreatIntel{exact: map[string]struct{}{}}
		}
		defaultIntel = intel
	})
	return defaultIntel
}

// Lookup probes the two stages for host. A Bloom miss is definitive and
// returns clean without touching the exact set. A Bloom hit is only reported
// as confirmed when the exact set agrees; unconfirmed hits are absorbed as
// clean so filter false positives can never surface in a verdict.
func (t *ThreatIntel) Lookup(host string) models.IntelResult {
	n := NormalizeHost(host)
	if n == "" {
		return models.IntelResult{Confidence: models.IntelClean}
	}
	if t.filter != nil && !t.filter.MightContain(n) {
		return models.IntelResult{Confidence: models.IntelClean}
	}
	if _, ok := t.exact[n]; ok {
		return models.IntelResult{IsKnownBad: true, Confidence: models.IntelConfirmed}
	}
	return models.IntelResult{Confidence: models.IntelClean}
}

// Stats exposes the underlying filter geometry for observability.
func (t *ThreatIntel) Stats() bloom.Stats {
	if t.filter == nil {
		return bloom.Stats{}
	}
	return t.filter.Stats()
}

// Size reports the exact-set cardinality.
func (t *ThreatIntel) Size() int {
	return len(t.exact)
}

// NormalizeHost reduces any URL-ish string to a bare comparable host:
// scheme, path, query, port and a leading www. are all stripped.
func NormalizeHost(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	for _, sep := range []string{"/", "?", "#"} {
		if idx := strings.Index(s, sep); idx >= 0 {
			s = s[:idx]
		}
	}
	if idx := strings.LastIndex(s, "@"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.Index(s, ":"); idx >= 0 && !strings.Contains(s, "]") {
		s = s[:idx]
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.Trim(s, ".")
}

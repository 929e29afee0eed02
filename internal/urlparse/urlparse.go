package urlparse

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

const (
	// MaxInputLength bounds raw input size before any parsing happens.
	// QR payloads above this are a DoS vector, not a legitimate URL.
	MaxInputLength = 2048

	// maxLabelLength is the DNS bound on a single hostname label.
	maxLabelLength = 63
)

// Schemes that are attack signatures in their own right. These are not
// parse failures: callers short-circuit them straight to a malicious verdict.
var blockedSchemes = map[string]bool{
	"javascript": true,
	"data":       true,
	"vbscript":   true,
}

// ParseError describes input the pipeline cannot score.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "urlparse: " + e.Reason
}

// BlockedSchemeError marks input carrying an executable-content scheme.
type BlockedSchemeError struct {
	Scheme string
}

func (e *BlockedSchemeError) Error() string {
	return fmt.Sprintf("urlparse: blocked scheme %q", e.Scheme)
}

// ParsedURL is an immutable snapshot of one input string, with the derived
// primitives every downstream signal reads. Built once per analysis call.
type ParsedURL struct {
	Raw      string
	Scheme   string
	Host     string
	Port     string
	Path     string
	Query    string
	Fragment string

	// UnicodeHost is the host with punycode labels decoded, for script
	// inspection. Equal to Host when no label is punycode.
	UnicodeHost string

	IsIPLiteral      bool
	HasAtSymbol      bool
	ContainsPunycode bool
	SubdomainCount   int
	QueryParamCount  int
	HostEntropy      float64
	PathEntropy      float64
}

// TLD returns the last host label, or "" for IP literals and single-label hosts.
func (u *ParsedURL) TLD() string {
	if u.IsIPLiteral {
		return ""
	}
	idx := strings.LastIndex(u.Host, ".")
	if idx < 0 || idx == len(u.Host)-1 {
		return ""
	}
	return u.Host[idx+1:]
}

// IsHTTPS reports whether the input carried an explicit https scheme.
func (u *ParsedURL) IsHTTPS() bool {
	return u.Scheme == "https"
}

// Parse validates and decomposes a raw scan payload into a ParsedURL.
// It returns *BlockedSchemeError for executable-content schemes and
// *ParseError for anything that cannot be scored. Pure function, no I/O.
func Parse(raw string) (*ParsedURL, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return nil, &ParseError{Reason: "empty input"}
	}
	if len(trimmed) > MaxInputLength {
		return nil, &ParseError{Reason: fmt.Sprintf("input exceeds %d bytes", MaxInputLength)}
	}
	for _, r := range trimmed {
		if r == 0 || (r < 0x20 && r != '\t') || r == 0x7f {
			return nil, &ParseError{Reason: "input contains control characters"}
		}
	}

	if scheme, ok := extractScheme(trimmed); ok && blockedSchemes[scheme] {
		return nil, &BlockedSchemeError{Scheme: scheme}
	}

	// Bare hosts are common in QR payloads ("example.com/pay"). Default
	// them to http so the missing-TLS heuristics see them as insecure.
	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return nil, &ParseError{Reason: "malformed URL: " + err.Error()}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, &ParseError{Reason: fmt.Sprintf("unsupported scheme %q", scheme)}
	}

	host := strings.ToLower(strings.Trim(parsed.Hostname(), "."))
	if host == "" {
		return nil, &ParseError{Reason: "missing host"}
	}

	isIP := net.ParseIP(host) != nil

	labels := strings.Split(host, ".")
	if !isIP {
		for _, label := range labels {
			if label == "" {
				return nil, &ParseError{Reason: "empty hostname label"}
			}
			if len(label) > maxLabelLength {
				return nil, &ParseError{Reason: "hostname label exceeds 63 characters"}
			}
		}
	}

	// Single defensive percent-decode of the path for entropy and keyword
	// inspection. A decode failure keeps the encoded form rather than erroring.
	path := parsed.EscapedPath()
	if decoded, derr := url.PathUnescape(path); derr == nil {
		path = decoded
	}

	containsPunycode := false
	for _, label := range labels {
		if strings.HasPrefix(label, "xn--") {
			containsPunycode = true
			break
		}
	}

	unicodeHost := host
	if containsPunycode {
		// Decode failure leaves the punycode form in place; the homograph
		// detector still sees the xn-- flag either way.
		if decoded, derr := idna.Lookup.ToUnicode(host); derr == nil {
			unicodeHost = decoded
		}
	}

	subdomains := 0
	if !isIP && len(labels) > 2 {
		subdomains = len(labels) - 2
	}

	return &ParsedURL{
		Raw:              trimmed,
		Scheme:           scheme,
		Host:             host,
		Port:             parsed.Port(),
		Path:             path,
		Query:            parsed.RawQuery,
		Fragment:         parsed.Fragment,
		UnicodeHost:      unicodeHost,
		IsIPLiteral:      isIP,
		HasAtSymbol:      parsed.User != nil || strings.Contains(trimmed, "@"),
		ContainsPunycode: containsPunycode,
		SubdomainCount:   subdomains,
		QueryParamCount:  countQueryParams(parsed.RawQuery),
		HostEntropy:      ShannonEntropy(host),
		PathEntropy:      ShannonEntropy(path),
	}, nil
}

// HasBlockedScheme reports whether raw starts with an executable-content
// scheme, without a full parse. Callers that classify payloads by shape use
// this so a javascript: or data: payload can never slip past as plain text.
func HasBlockedScheme(raw string) bool {
	scheme, ok := extractScheme(strings.TrimSpace(raw))
	return ok && blockedSchemes[scheme]
}

// extractScheme pulls the scheme off the front of raw without a full parse,
// so blocked schemes are caught even when the rest of the input is garbage.
func extractScheme(raw string) (string, bool) {
	idx := strings.Index(raw, ":")
	if idx <= 0 {
		return "", false
	}
	scheme := strings.ToLower(raw[:idx])
	for _, r := range scheme {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '+' && r != '-' && r != '.' {
			return "", false
		}
	}
	return scheme, true
}

func countQueryParams(rawQuery string) int {
	if rawQuery == "" {
		return 0
	}
	return strings.Count(rawQuery, "&") + 1
}

// ShannonEntropy returns the character-level entropy of s in bits per char.
// Random-looking hosts and paths ("x9f2k1.cc") score well above natural
// language, which sits around 3–4 bits.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}

	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

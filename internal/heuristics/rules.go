package heuristics

import (
	"strings"
	"unicode"

	"qrguard/internal/models"
	"qrguard/internal/urlparse"
)

// MaxScore caps the total heuristic contribution no matter how many rules
// fire. Without the cap a single noisy URL can trip a dozen rules and
// drown out every other signal.
const MaxScore = 40.0

// Calibrated rule weights. Hand-tuned against the labeled URL corpus, not
// learned at runtime.
const (
	weightIPHost           = 8.0
	weightAtSymbol         = 7.0
	weightDeepSubdomains   = 6.0
	weightHostEntropy      = 5.0
	weightPathEntropy      = 4.0
	weightInsecureScheme   = 3.0
	weightInsecureLogin    = 8.0
	weightShortener        = 5.0
	weightRiskyExtension   = 9.0
	weightPhishingKeywords = 7.0
	weightFragmentRedirect = 6.0
	weightQueryRedirect    = 5.0
	weightPunycode         = 5.0
	weightOversizedURL     = 3.0
	weightDashHeavyHost    = 4.0
	weightDigitHeavyHost   = 4.0
	weightOddPort          = 5.0
	weightQueryFlood       = 3.0
	weightSensitiveHost    = 6.0
	weightEncodedPath      = 4.0
	weightDotted           = 3.0
	weightPathTraversal    = 4.0
	weightLeetHost         = 4.0
	weightLongHost         = 3.0
	weightNestedURL        = 5.0
)

var shortenerHosts = map[string]bool{
	"bit.ly": true, "tinyurl.com": true, "t.co": true, "goo.gl": true,
	"ow.ly": true, "is.gd": true, "buff.ly": true, "rebrand.ly": true,
	"cutt.ly": true, "rb.gy": true, "shorturl.at": true,
}

var riskyExtensions = []string{
	".exe", ".scr", ".bat", ".cmd", ".msi", ".apk", ".jar", ".vbs", ".ps1",
}

var sensitivePathSegments = []string{
	"/login", "/signin", "/verify", "/account", "/secure", "/update", "/confirm",
}

var phishingKeywords = []string{
	"verify", "account", "secure", "login", "signin", "update", "confirm",
	"suspended", "urgent", "wallet",
}

type rule struct {
	name        string
	weight      float64
	description string
	match       func(u *urlparse.ParsedURL) bool
}

// rules are independent pure predicates over ParsedURL. Evaluation order is
// the declaration order below; it only affects flag ordering, never scores.
var rules = []rule{
	{
		name:        "ip_literal_host",
		weight:      weightIPHost,
		description: "Host is a raw IP address instead of a domain name",
		match:       func(u *urlparse.ParsedURL) bool { return u.IsIPLiteral },
	},
	{
		name:        "at_symbol_injection",
		weight:      weightAtSymbol,
		description: "URL contains an @ symbol, hiding the real destination",
		match:       func(u *urlparse.ParsedURL) bool { return u.HasAtSymbol },
	},
	{
		name:        "excessive_subdomains",
		weight:      weightDeepSubdomains,
		description: "Unusually deep subdomain nesting",
		match:       func(u *urlparse.ParsedURL) bool { return u.SubdomainCount >= 3 },
	},
	{
		name:        "high_host_entropy",
		weight:      weightHostEntropy,
		description: "Hostname looks randomly generated",
		match:       func(u *urlparse.ParsedURL) bool { return !u.IsIPLiteral && u.HostEntropy > 4.2 },
	},
	{
		name:        "high_path_entropy",
		weight:      weightPathEntropy,
		description: "Path looks randomly generated",
		match:       func(u *urlparse.ParsedURL) bool { return len(u.Path) > 8 && u.PathEntropy > 4.5 },
	},
	{
		name:        "insecure_scheme",
		weight:      weightInsecureScheme,
		description: "Connection is not encrypted (no HTTPS)",
		match:       func(u *urlparse.ParsedURL) bool { return !u.IsHTTPS() },
	},
	{
		name:        "insecure_credential_page",
		weight:      weightInsecureLogin,
		description: "Login or verification page served without HTTPS",
		match: func(u *urlparse.ParsedURL) bool {
			if u.IsHTTPS() {
				return false
			}
			return hasSensitiveSegment(u.Path)
		},
	},
	{
		name:        "url_shortener",
		weight:      weightShortener,
		description: "Known URL shortener hides the final destination",
		match:       func(u *urlparse.ParsedURL) bool { return shortenerHosts[u.Host] },
	},
	{
		name:        "risky_file_extension",
		weight:      weightRiskyExtension,
		description: "Path points at an executable or script file",
		match: func(u *urlparse.ParsedURL) bool {
			lower := strings.ToLower(u.Path)
			for _, ext := range riskyExtensions {
				if strings.HasSuffix(lower, ext) {
					return true
				}
			}
			return false
		},
	},
	{
		name:        "phishing_keyword_cluster",
		weight:      weightPhishingKeywords,
		description: "Multiple credential-phishing keywords appear together",
		match: func(u *urlparse.ParsedURL) bool {
			// Host is already lowercased by the parser; path and query are not.
			haystack := strings.ToLower(u.Host + u.Path + u.Query)
			hits := 0
			for _, kw := range phishingKeywords {
				if strings.Contains(haystack, kw) {
					hits++
				}
			}
			return hits >= 2
		},
	},
	{
		name:        "fragment_redirect",
		weight:      weightFragmentRedirect,
		description: "Fragment embeds a second URL (hidden redirect)",
		match:       func(u *urlparse.ParsedURL) bool { return containsNestedURL(u.Fragment) },
	},
	{
		name:        "query_redirect",
		weight:      weightQueryRedirect,
		description: "Query string embeds a second URL (open redirect)",
		match:       func(u *urlparse.ParsedURL) bool { return containsNestedURL(u.Query) },
	},
	{
		name:        "punycode_host",
		weight:      weightPunycode,
		description: "Host uses punycode-encoded international characters",
		match:       func(u *urlparse.ParsedURL) bool { return u.ContainsPunycode },
	},
	{
		name:        "oversized_url",
		weight:      weightOversizedURL,
		description: "URL is unusually long",
		match:       func(u *urlparse.ParsedURL) bool { return len(u.Raw) > 100 },
	},
	{
		name:        "dash_heavy_host",
		weight:      weightDashHeavyHost,
		description: "Hostname chains many hyphenated tokens",
		match:       func(u *urlparse.ParsedURL) bool { return strings.Count(u.Host, "-") >= 3 },
	},
	{
		name:        "digit_heavy_host",
		weight:      weightDigitHeavyHost,
		description: "Hostname is dominated by digits",
		match: func(u *urlparse.ParsedURL) bool {
			return !u.IsIPLiteral && digitRatio(u.Host) > 0.3
		},
	},
	{
		name:        "nonstandard_port",
		weight:      weightOddPort,
		description: "Non-standard port number",
		match: func(u *urlparse.ParsedURL) bool {
			return u.Port != "" && u.Port != "80" && u.Port != "443"
		},
	},
	{
		name:        "query_parameter_flood",
		weight:      weightQueryFlood,
		description: "Excessive number of query parameters",
		match:       func(u *urlparse.ParsedURL) bool { return u.QueryParamCount > 8 },
	},
	{
		name:        "sensitive_keyword_in_host",
		weight:      weightSensitiveHost,
		description: "Hostname itself carries login/verification keywords",
		match: func(u *urlparse.ParsedURL) bool {
			for _, kw := range []string{"login", "signin", "verify", "secure", "account"} {
				if strings.Contains(u.Host, kw) {
					return true
				}
			}
			return false
		},
	},
	{
		name:        "percent_encoded_path",
		weight:      weightEncodedPath,
		description: "Path is heavily percent-encoded",
		match:       func(u *urlparse.ParsedURL) bool { return strings.Count(u.Raw, "%") >= 4 },
	},
	{
		name:        "dotted_url",
		weight:      weightDotted,
		description: "Unusually many dots across the URL",
		match:       func(u *urlparse.ParsedURL) bool { return strings.Count(u.Raw, ".") > 6 },
	},
	{
		name:        "path_traversal",
		weight:      weightPathTraversal,
		description: "Path contains traversal sequences",
		match: func(u *urlparse.ParsedURL) bool {
			return strings.Contains(u.Path, "..") || strings.Contains(u.Path, "//")
		},
	},
	{
		name:        "leetspeak_host",
		weight:      weightLeetHost,
		description: "Hostname mixes digits into alphabetic words (paypa1 style)",
		match:       func(u *urlparse.ParsedURL) bool { return !u.IsIPLiteral && hasEmbeddedDigits(u.Host) },
	},
	{
		name:        "long_host",
		weight:      weightLongHost,
		description: "Hostname is unusually long",
		match:       func(u *urlparse.ParsedURL) bool { return len(u.Host) > 40 },
	},
	{
		name:        "nested_url",
		weight:      weightNestedURL,
		description: "More than one URL packed into a single payload",
		match: func(u *urlparse.ParsedURL) bool {
			return strings.Count(strings.ToLower(u.Raw), "http") > 1
		},
	},
}

// Evaluate runs every rule against u and returns the capped total plus the
// triggered findings in declaration order. Pure and safe for concurrent use.
func Evaluate(u *urlparse.ParsedURL) (float64, []models.HeuristicFinding) {
	score := 0.0
	var findings []models.HeuristicFinding

	for _, r := range rules {
		if !r.match(u) {
			continue
		}
		score += r.weight
		findings = append(findings, models.HeuristicFinding{
			Rule:        r.name,
			Weight:      r.weight,
			Triggered:   true,
			Description: r.description,
		})
	}

	if score > MaxScore {
		score = MaxScore
	}
	return score, findings
}

// RuleCount reports how many rules the engine evaluates, for observability.
func RuleCount() int {
	return len(rules)
}

func hasSensitiveSegment(path string) bool {
	lower := strings.ToLower(path)
	for _, seg := range sensitivePathSegments {
		if strings.Contains(lower, seg) {
			return true
		}
	}
	return false
}

// containsNestedURL reports whether a query or fragment smuggles a full URL.
func containsNestedURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "http://") || strings.Contains(lower, "https://") ||
		strings.Contains(lower, "http%3a%2f%2f") || strings.Contains(lower, "https%3a%2f%2f")
}

func digitRatio(s string) float64 {
	if s == "" {
		return 0
	}
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}

// hasEmbeddedDigits reports digits glued inside alphabetic runs, the classic
// 0-for-o and 1-for-l substitution. Hosts that are digit-heavy overall (IPs,
// CDN shards like cdn7711) are handled by digit_heavy_host instead.
func hasEmbeddedDigits(host string) bool {
	// Only the registrable label matters; "secure1.example.com" subdomain
	// digits are common and benign.
	label := host
	if idx := strings.Index(host, "."); idx > 0 {
		label = host[:idx]
	}

	runes := []rune(label)
	for i := 1; i < len(runes)-1; i++ {
		if (runes[i] == '0' || runes[i] == '1' || runes[i] == '3' || runes[i] == '5') &&
			unicode.IsLetter(runes[i-1]) {
			return true
		}
	}
	// Trailing substitution: "paypa1".
	if len(runes) >= 2 {
		last := runes[len(runes)-1]
		if (last == '0' || last == '1') && unicode.IsLetter(runes[len(runes)-2]) {
			return true
		}
	}
	return false
}

package lookup

import "strings"

// TLDMaxScore is the ceiling of the TLD risk contribution.
const TLDMaxScore = 10

// tldDefaultScore is what unlisted TLDs get. Small and non-zero: obscure is
// not a crime, but it is not the same trust level as .com either.
const tldDefaultScore = 2

// Risk tiers for top-level domains. The high tier is dominated by free or
// near-free registries that phishing campaigns burn through in bulk.
var tldHighRisk = map[string]int{
	"tk": 10, "ml": 10, "ga": 10, "cf": 10, "gq": 10,
	"xyz": 8, "icu": 8, "top": 8, "work": 8, "click": 8,
	"link": 7, "country": 7, "stream": 7, "download": 7, "gdn": 7,
	"loan": 7, "racing": 7, "win": 7, "bid": 7, "zip": 8, "mov": 8,
	"rest": 6, "cam": 6, "quest": 6, "monster": 6,
}

var tldModerateRisk = map[string]int{
	"info": 4, "biz": 4, "online": 4, "site": 4, "club": 4,
	"buzz": 4, "live": 3, "pw": 5, "cc": 4, "ws": 4, "vip": 4,
}

// Established TLDs score zero outright.
var tldEstablished = map[string]bool{
	"com": true, "org": true, "net": true, "edu": true, "gov": true,
	"int": true, "mil": true, "io": true, "dev": true, "app": true,
	"de": true, "uk": true, "fr": true, "nl": true, "jp": true,
	"ca": true, "au": true, "ch": true, "se": true, "no": true,
	"dk": true, "fi": true, "it": true, "es": true, "ie": true,
	"nz": true, "us": true, "kr": true, "sg": true, "br": true,
}

// ScoreTLD maps a top-level domain to its risk contribution in [0,10].
// Empty TLDs (IP literals, single-label hosts) score zero; the IP-literal
// signal is the heuristic engine's job.
func ScoreTLD(tld string) int {
	tld = strings.ToLower(strings.TrimPrefix(tld, "."))
	if tld == "" {
		return 0
	}
	if tldEstablished[tld] {
		return 0
	}
	if s, ok := tldHighRisk[tld]; ok {
		return s
	}
	if s, ok := tldModerateRisk[tld]; ok {
		return s
	}
	return tldDefaultScore
}

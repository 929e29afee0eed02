package ml

import (
	"strings"

	"qrguard/internal/urlparse"
)

// FeatureCount is the fixed width of every feature vector. The three models
// are calibrated against this exact layout; changing it invalidates them.
const FeatureCount = 15

// Feature slot indices.
const (
	FeatURLLength = iota
	FeatHostLength
	FeatPathLength
	FeatSubdomains
	FeatHTTPS
	FeatIPHost
	FeatHostEntropy
	FeatPathEntropy
	FeatQueryParams
	FeatAtSymbol
	FeatDotCount
	FeatDashCount
	FeatHasPort
	FeatShortener
	FeatSuspiciousTLD
)

// FeatureNames maps slot index to a stable name for explainability output.
var FeatureNames = [FeatureCount]string{
	"url_length", "host_length", "path_length", "subdomain_count", "has_https",
	"ip_host", "host_entropy", "path_entropy", "query_param_count", "at_symbol",
	"dot_count", "dash_count", "has_port", "shortener_host", "suspicious_tld",
}

// FeatureVector is a fixed-width array of normalized values in [0,1].
// Being an array rather than a slice makes it comparable, so predictions can
// be cached by vector equality.
type FeatureVector [FeatureCount]float64

var featureShorteners = map[string]bool{
	"bit.ly": true, "tinyurl.com": true, "t.co": true, "goo.gl": true,
	"ow.ly": true, "is.gd": true, "cutt.ly": true,
}

var featureSuspiciousTLDs = map[string]bool{
	"tk": true, "ml": true, "ga": true, "cf": true, "gq": true,
	"xyz": true, "icu": true, "top": true,
}

// ExtractFeatures maps a parsed URL onto the fixed feature layout. Each slot
// is clamped into [0,1] by its own normalization cap. Pure and deterministic.
func ExtractFeatures(u *urlparse.ParsedURL) FeatureVector {
	var f FeatureVector

	f[FeatURLLength] = capRatio(float64(len(u.Raw)), 500)
	f[FeatHostLength] = capRatio(float64(len(u.Host)), 100)
	f[FeatPathLength] = capRatio(float64(len(u.Path)), 200)
	f[FeatSubdomains] = capRatio(float64(u.SubdomainCount), 5)
	f[FeatHTTPS] = boolFeature(u.IsHTTPS())
	f[FeatIPHost] = boolFeature(u.IsIPLiteral)
	f[FeatHostEntropy] = capRatio(u.HostEntropy, 5)
	f[FeatPathEntropy] = capRatio(u.PathEntropy, 5)
	f[FeatQueryParams] = capRatio(float64(u.QueryParamCount), 10)
	f[FeatAtSymbol] = boolFeature(u.HasAtSymbol)
	f[FeatDotCount] = capRatio(float64(strings.Count(u.Raw, ".")), 10)
	f[FeatDashCount] = capRatio(float64(strings.Count(u.Raw, "-")), 10)
	f[FeatHasPort] = boolFeature(u.Port != "")
	f[FeatShortener] = boolFeature(featureShorteners[u.Host])
	f[FeatSuspiciousTLD] = boolFeature(featureSuspiciousTLDs[u.TLD()])

	return f
}

// at returns the feature at idx, or 0 for out-of-range indices. Model
// constants referencing a bad slot degrade to a neutral contribution instead
// of panicking mid-scan.
func (f FeatureVector) at(idx int) float64 {
	if idx < 0 || idx >= FeatureCount {
		return 0
	}
	return f[idx]
}

func capRatio(v, cap float64) float64 {
	r := v / cap
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

package analyzer

import (
	"errors"
	"fmt"
	"math"

	"qrguard/internal/heuristics"
	"qrguard/internal/lookup"
	"qrguard/internal/ml"
	"qrguard/internal/models"
	"qrguard/internal/urlparse"
)

// homographWeight is what a confirmed mixed-script host adds to the raw
// heuristic total, alongside the rule engine's own findings.
const homographWeight = 8.0

// Analyzer is the assembled scoring pipeline. All reference tables are
// bound at construction and read-only afterwards, so one Analyzer is safe
// for concurrent use from any number of goroutines.
type Analyzer struct {
	cfg      Config
	brands   *lookup.BrandIndex
	intel    *lookup.ThreatIntel
	ensemble *ml.Ensemble
}

// New builds an analyzer over the bundled reference tables.
func New(cfg Config) (*Analyzer, error) {
	return NewWithTables(cfg, lookup.DefaultBrandIndex(), lookup.DefaultThreatIntel(), ml.DefaultEnsemble())
}

// NewWithTables builds an analyzer with explicit tables, so tests can
// substitute small ones.
func NewWithTables(cfg Config, brands *lookup.BrandIndex, intel *lookup.ThreatIntel, ensemble *ml.Ensemble) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if brands == nil || intel == nil || ensemble == nil {
		return nil, &ConfigError{Reason: "reference tables must not be nil"}
	}
	return &Analyzer{cfg: cfg, brands: brands, intel: intel, ensemble: ensemble}, nil
}

// Analyze classifies one raw scan payload. Pure, synchronous and CPU-bound;
// identical input always produces an identical assessment.
func (a *Analyzer) Analyze(raw string) models.RiskAssessment {
	parsed, err := urlparse.Parse(raw)
	if err != nil {
		return a.assessUnparseable(raw, err)
	}

	// Stage 1: denylist confirmation is ground truth and overrides
	// everything else.
	intel := a.intel.Lookup(parsed.Host)
	if intel.IsKnownBad {
		return models.RiskAssessment{
			Input:   raw,
			Score:   100,
			Verdict: models.VerdictMalicious,
			Flags:   []string{"Domain is on the known-threat denylist"},
			Details: models.URLAnalysisResult{OriginalURL: raw},
			ScoreBreakdown: map[string]float64{
				"intel_confirmed": 100,
			},
			Confidence: 1.0,
			Intel:      intel,
		}
	}

	// Stage 2: the four independent signals. Each is a pure function of
	// the parsed URL and they could run in any order.
	heuristicRaw, findings := heuristics.Evaluate(parsed)
	brand := a.brands.Match(parsed.Host)
	homograph, homographReasons := lookup.DetectHomograph(parsed.UnicodeHost)
	tldRaw := lookup.ScoreTLD(parsed.TLD())
	features := ml.ExtractFeatures(parsed)
	prediction := a.ensemble.Predict(features)

	if homograph {
		heuristicRaw += homographWeight
		if heuristicRaw > heuristics.MaxScore {
			heuristicRaw = heuristics.MaxScore
		}
	}

	// Stage 3: scale each raw signal onto its configured ceiling.
	heuristicScore := heuristicRaw / heuristics.MaxScore * a.cfg.HeuristicWeight
	mlScore := prediction.Probability * a.cfg.MLWeight
	brandScore := 0.0
	if brand != nil {
		brandScore = brand.Similarity * a.cfg.BrandWeight
	}
	tldScore := float64(tldRaw) / lookup.TLDMaxScore * a.cfg.TLDWeight

	total := heuristicScore + mlScore + brandScore + tldScore
	score := int(math.Round(total))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	verdict := a.verdictFor(score)

	// Flags keep a stable order: heuristics in rule order, then brand,
	// homograph, TLD. Wording is stable for snapshot comparisons.
	var flags []string
	for _, f := range findings {
		flags = append(flags, f.Description)
	}
	if brand != nil {
		flags = append(flags, fmt.Sprintf("Host imitates the %s brand (canonical domain %s)",
			brand.Brand, brand.CanonicalDomain))
	}
	flags = append(flags, homographReasons...)
	if tldRaw >= 5 {
		flags = append(flags, fmt.Sprintf("Top-level domain .%s is frequently abused", parsed.TLD()))
	}

	breakdown := map[string]float64{
		"heuristics":          round2(heuristicScore),
		"ml_ensemble":         round2(mlScore),
		"brand_impersonation": round2(brandScore),
		"tld_risk":            round2(tldScore),
	}

	return models.RiskAssessment{
		Input:   raw,
		Score:   score,
		Verdict: verdict,
		Flags:   flags,
		Details: models.URLAnalysisResult{
			OriginalURL:    raw,
			HeuristicScore: round2(heuristicScore),
			MLScore:        round2(mlScore),
			BrandScore:     round2(brandScore),
			TLDScore:       round2(tldScore),
		},
		ScoreBreakdown: breakdown,
		Confidence:     a.confidenceFor(score, prediction),
		Brand:          brand,
		ML:             &prediction,
		Intel:          intel,
	}
}

// assessUnparseable maps parse failures onto their terminal verdicts.
// Blocked schemes are attack signatures and go straight to malicious;
// everything else is unknown, never silently safe.
func (a *Analyzer) assessUnparseable(raw string, err error) models.RiskAssessment {
	var blocked *urlparse.BlockedSchemeError
	if errors.As(err, &blocked) {
		return models.RiskAssessment{
			Input:   raw,
			Score:   100,
			Verdict: models.VerdictMalicious,
			Flags:   []string{fmt.Sprintf("Payload uses the executable %s: scheme", blocked.Scheme)},
			Details: models.URLAnalysisResult{OriginalURL: raw},
			ScoreBreakdown: map[string]float64{
				"blocked_scheme": 100,
			},
			Confidence: 1.0,
			Intel:      models.IntelResult{Confidence: models.IntelClean},
		}
	}

	var parseErr *urlparse.ParseError
	reason := "unparseable input"
	if errors.As(err, &parseErr) {
		reason = parseErr.Reason
	}
	return models.RiskAssessment{
		Input:          raw,
		Score:          0,
		Verdict:        models.VerdictUnknown,
		Flags:          []string{"Input could not be parsed: " + reason},
		Details:        models.URLAnalysisResult{OriginalURL: raw},
		ScoreBreakdown: map[string]float64{},
		Confidence:     0,
		Intel:          models.IntelResult{Confidence: models.IntelClean},
	}
}

func (a *Analyzer) verdictFor(score int) models.Verdict {
	switch {
	case score < a.cfg.SafeThreshold:
		return models.VerdictSafe
	case score < a.cfg.SuspiciousThreshold:
		return models.VerdictSuspicious
	default:
		return models.VerdictMalicious
	}
}

// confidenceFor blends the ensemble's own confidence with how far the fused
// score sits from the nearest verdict boundary.
func (a *Analyzer) confidenceFor(score int, prediction models.EnsemblePrediction) float64 {
	distSafe := math.Abs(float64(score - a.cfg.SafeThreshold))
	distSusp := math.Abs(float64(score - a.cfg.SuspiciousThreshold))
	nearest := math.Min(distSafe, distSusp)

	// 25 points from a boundary is treated as fully decisive.
	decisiveness := math.Min(nearest/25.0, 1.0)

	c := 0.5*decisiveness + 0.5*prediction.Confidence
	if c > 1 {
		c = 1
	}
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package models

type Verdict string

const (
	VerdictSafe       Verdict = "safe"
	VerdictSuspicious Verdict = "suspicious"
	VerdictMalicious  Verdict = "malicious"
	VerdictUnknown    Verdict = "unknown"
)

// IntelConfidence is the outcome of the two-stage denylist lookup.
type IntelConfidence string

const (
	IntelConfirmed IntelConfidence = "confirmed"
	IntelClean     IntelConfidence = "clean"
)

// HeuristicFinding records one rule evaluation. Triggered findings carry
// their calibrated weight; untriggered rules are not reported.
type HeuristicFinding struct {
	Rule        string  `json:"rule"`
	Weight      float64 `json:"weight"`
	Triggered   bool    `json:"triggered"`
	Description string  `json:"description"`
}

// BrandMatch is the best impersonation candidate for a host, if any.
type BrandMatch struct {
	Brand           string  `json:"brand"`
	CanonicalDomain string  `json:"canonical_domain"`
	Similarity      float64 `json:"similarity"`
	MatchedField    string  `json:"matched_field"`
}

// EnsemblePrediction is the fused output of the three weak learners.
type EnsemblePrediction struct {
	Probability    float64 `json:"probability"`
	LogisticScore  float64 `json:"logistic_score"`
	BoostingScore  float64 `json:"boosting_score"`
	StumpScore     float64 `json:"stump_score"`
	Confidence     float64 `json:"confidence"`
	ModelAgreement float64 `json:"model_agreement"`
	DominantModel  string  `json:"dominant_model"`
}

// IntelResult is the verdict-affecting slice of the threat-intel lookup.
type IntelResult struct {
	IsKnownBad bool            `json:"is_known_bad"`
	Confidence IntelConfidence `json:"confidence"`
}

// URLAnalysisResult carries the four bounded sub-scores. Each is always
// present and zero when the signal did not fire.
type URLAnalysisResult struct {
	OriginalURL    string  `json:"original_url"`
	HeuristicScore float64 `json:"heuristic_score"`
	MLScore        float64 `json:"ml_score"`
	BrandScore     float64 `json:"brand_score"`
	TLDScore       float64 `json:"tld_score"`
}

// RiskAssessment is the externally visible result of one scan. Created once
// per call, never mutated, never persisted by the scoring core itself.
type RiskAssessment struct {
	Input          string              `json:"input"`
	Score          int                 `json:"score"`
	Verdict        Verdict             `json:"verdict"`
	Flags          []string            `json:"flags"`
	Details        URLAnalysisResult   `json:"details"`
	ScoreBreakdown map[string]float64  `json:"score_details"`
	Confidence     float64             `json:"confidence"`
	Brand          *BrandMatch         `json:"brand_match,omitempty"`
	ML             *EnsemblePrediction `json:"ml,omitempty"`
	Intel          IntelResult         `json:"intel"`
	Duration       string              `json:"duration,omitempty"`
	Error          string              `json:"error,omitempty"`
}

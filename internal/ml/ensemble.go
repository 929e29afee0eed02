package ml

import (
	"fmt"
	"math"

	"qrguard/internal/models"
)

// weightSumTolerance is how far the three mixing weights may drift from 1.0
// before construction is rejected.
const weightSumTolerance = 0.01

// sigmoidClamp bounds the logit before exponentiation; beyond ±10 the
// sigmoid is saturated anyway and large inputs risk float overflow.
const sigmoidClamp = 10.0

// logisticModel is a fixed-weight linear classifier over the feature vector.
type logisticModel struct {
	weights [FeatureCount]float64
	bias    float64
}

func (m logisticModel) predict(f FeatureVector) float64 {
	z := m.bias
	for i, w := range m.weights {
		z += w * f.at(i)
	}
	return sigmoid(z)
}

// stump is a single-split decision tree: one feature, one threshold, one
// output per side, scaled by a learning-rate weight.
type stump struct {
	feature   int
	threshold float64
	left      float64
	right     float64
	weight    float64
}

// ruleStump is a hand-written boolean condition over the raw feature vector
// contributing a fixed confidence delta. Deltas may be negative.
type ruleStump struct {
	name      string
	condition func(f FeatureVector) bool
	delta     float64
}

// Ensemble fuses the three weak learners with fixed mixing weights.
// Stateless after construction; safe for concurrent use.
type Ensemble struct {
	logistic  logisticModel
	stumps    []stump
	rules     []ruleStump
	wLogistic float64
	wBoosting float64
	wRules    float64
}

// NewEnsemble validates the mixing weights and returns a ready ensemble.
// Weights not summing to 1.0 are a programming error and fail construction.
func NewEnsemble(wLogistic, wBoosting, wRules float64) (*Ensemble, error) {
	sum := wLogistic + wBoosting + wRules
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("ml: mixing weights sum to %.4f, want 1.0", sum)
	}
	return &Ensemble{
		logistic:  defaultLogistic,
		stumps:    defaultStumps,
		rules:     defaultRuleStumps,
		wLogistic: wLogistic,
		wBoosting: wBoosting,
		wRules:    wRules,
	}, nil
}

// DefaultEnsemble returns the ensemble with the calibrated mixing weights.
func DefaultEnsemble() *Ensemble {
	e, err := NewEnsemble(0.40, 0.35, 0.25)
	if err != nil {
		// Unreachable with the constants above; construction is validated
		// by TestNewEnsembleWeights.
		panic(err)
	}
	return e
}

// Predict scores a feature vector through all three models and fuses the
// results. Pure function of f.
func (e *Ensemble) Predict(f FeatureVector) models.EnsemblePrediction {
	pLogistic := e.logistic.predict(f)
	pBoosting := e.boostingScore(f)
	pRules := e.ruleScore(f)

	fused := e.wLogistic*pLogistic + e.wBoosting*pBoosting + e.wRules*pRules

	agreement := modelAgreement(pLogistic, pBoosting, pRules)

	// Confidence blends how decisive the fused probability is with how much
	// the three models agree.
	decisiveness := math.Abs(fused-0.5) * 2
	confidence := clamp01(0.7*decisiveness + 0.3*agreement)

	return models.EnsemblePrediction{
		Probability:    fused,
		LogisticScore:  pLogistic,
		BoostingScore:  pBoosting,
		StumpScore:     pRules,
		Confidence:     confidence,
		ModelAgreement: agreement,
		DominantModel:  dominantModel(pLogistic, pBoosting, pRules),
	}
}

// boostingScore sums all stump outputs and squashes them. The 2x gain maps
// the stumps' working range (roughly ±1.5) onto the steep part of the sigmoid.
func (e *Ensemble) boostingScore(f FeatureVector) float64 {
	sum := 0.0
	for _, s := range e.stumps {
		if s.feature < 0 || s.feature >= FeatureCount {
			continue
		}
		if f.at(s.feature) > s.threshold {
			sum += s.right * s.weight
		} else {
			sum += s.left * s.weight
		}
	}
	return sigmoid(2 * sum)
}

// ruleScore starts neutral at 0.5 and applies each triggered rule's delta.
func (e *Ensemble) ruleScore(f FeatureVector) float64 {
	score := 0.5
	for _, r := range e.rules {
		if r.condition(f) {
			score += r.delta
		}
	}
	return clamp01(score)
}

// modelAgreement is 1 minus the normalized variance of the three component
// outputs. Variance of values in [0,1] tops out at 0.25, so the 4x factor
// maps full disagreement onto 0.
func modelAgreement(a, b, c float64) float64 {
	mean := (a + b + c) / 3
	variance := ((a-mean)*(a-mean) + (b-mean)*(b-mean) + (c-mean)*(c-mean)) / 3
	return clamp01(1 - 4*variance)
}

// dominantModel names the component furthest from its neutral point, for
// explainability only. Below the decisiveness floor the models are reported
// as consensus.
func dominantModel(pLogistic, pBoosting, pRules float64) string {
	const floor = 0.15

	devLog := math.Abs(pLogistic - 0.5)
	devBoost := math.Abs(pBoosting - 0.5)
	devRules := math.Abs(pRules - 0.5)

	maxDev := devLog
	name := "logistic"
	if devBoost > maxDev {
		maxDev = devBoost
		name = "boosting"
	}
	if devRules > maxDev {
		maxDev = devRules
		name = "rules"
	}
	if maxDev < floor {
		return "consensus"
	}
	return name
}

func sigmoid(z float64) float64 {
	if z > sigmoidClamp {
		z = sigmoidClamp
	} else if z < -sigmoidClamp {
		z = -sigmoidClamp
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Calibrated model constants. Fixed at build time; nothing learns at runtime.

var defaultLogistic = logisticModel{
	weights: [FeatureCount]float64{
		1.2,  // url_length
		0.8,  // host_length
		0.6,  // path_length
		1.5,  // subdomain_count
		-2.2, // has_https
		2.8,  // ip_host
		1.4,  // host_entropy
		1.1,  // path_entropy
		0.5,  // query_param_count
		2.4,  // at_symbol
		0.9,  // dot_count
		1.3,  // dash_count
		1.6,  // has_port
		2.0,  // shortener_host
		2.6,  // suspicious_tld
	},
	bias: -1.8,
}

var defaultStumps = []stump{
	{feature: FeatIPHost, threshold: 0.5, left: -0.4, right: 1.8, weight: 0.30},
	{feature: FeatHTTPS, threshold: 0.5, left: 0.9, right: -0.8, weight: 0.35},
	{feature: FeatSuspiciousTLD, threshold: 0.5, left: -0.3, right: 1.6, weight: 0.35},
	{feature: FeatShortener, threshold: 0.5, left: -0.2, right: 1.2, weight: 0.25},
	{feature: FeatAtSymbol, threshold: 0.5, left: -0.2, right: 1.5, weight: 0.30},
	{feature: FeatHostEntropy, threshold: 0.72, left: -0.3, right: 0.8, weight: 0.25},
	{feature: FeatSubdomains, threshold: 0.4, left: -0.2, right: 0.9, weight: 0.20},
	{feature: FeatURLLength, threshold: 0.3, left: -0.2, right: 0.6, weight: 0.20},
	{feature: FeatDashCount, threshold: 0.25, left: -0.15, right: 0.7, weight: 0.20},
	{feature: FeatPathEntropy, threshold: 0.75, left: -0.1, right: 0.5, weight: 0.15},
}

var defaultRuleStumps = []ruleStump{
	{
		name:  "ip_host_without_https",
		delta: 0.25,
		condition: func(f FeatureVector) bool {
			return f.at(FeatIPHost) > 0.5 && f.at(FeatHTTPS) < 0.5
		},
	},
	{
		name:  "suspicious_tld_without_https",
		delta: 0.20,
		condition: func(f FeatureVector) bool {
			return f.at(FeatSuspiciousTLD) > 0.5 && f.at(FeatHTTPS) < 0.5
		},
	},
	{
		name:  "at_symbol_present",
		delta: 0.15,
		condition: func(f FeatureVector) bool {
			return f.at(FeatAtSymbol) > 0.5
		},
	},
	{
		name:  "shortener_host",
		delta: 0.10,
		condition: func(f FeatureVector) bool {
			return f.at(FeatShortener) > 0.5
		},
	},
	{
		name:  "deep_subdomains_long_url",
		delta: 0.10,
		condition: func(f FeatureVector) bool {
			return f.at(FeatSubdomains) > 0.4 && f.at(FeatURLLength) > 0.3
		},
	},
	{
		// The one negative stump: HTTPS with no red flags is the canonical
		// benign pattern and should actively pull risk down.
		name:  "https_with_clean_profile",
		delta: -0.25,
		condition: func(f FeatureVector) bool {
			return f.at(FeatHTTPS) > 0.5 &&
				f.at(FeatIPHost) < 0.5 &&
				f.at(FeatAtSymbol) < 0.5 &&
				f.at(FeatShortener) < 0.5 &&
				f.at(FeatSuspiciousTLD) < 0.5 &&
				f.at(FeatHostEntropy) < 0.72
		},
	},
}

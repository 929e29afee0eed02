package analyzer

import (
	"fmt"
	"math"
)

// weightSumTolerance bounds how far the four sub-score weights may drift
// from a total of 100 before construction is rejected.
const weightSumTolerance = 0.01

// ConfigError marks a programming error in the analyzer configuration.
// It is returned at construction time, never per call.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "analyzer: invalid config: " + e.Reason
}

// Config is the calibration surface of the pipeline. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// Sub-score ceilings. Must sum to 100.
	HeuristicWeight float64
	MLWeight        float64
	BrandWeight     float64
	TLDWeight       float64

	// Verdict thresholds over the fused 0-100 score.
	SafeThreshold       int
	SuspiciousThreshold int
}

// DefaultConfig returns the calibrated production configuration.
func DefaultConfig() Config {
	return Config{
		HeuristicWeight:     40,
		MLWeight:            30,
		BrandWeight:         20,
		TLDWeight:           10,
		SafeThreshold:       30,
		SuspiciousThreshold: 60,
	}
}

// Validate fails fast on impossible calibration.
func (c Config) Validate() error {
	sum := c.HeuristicWeight + c.MLWeight + c.BrandWeight + c.TLDWeight
	if math.Abs(sum-100) > weightSumTolerance {
		return &ConfigError{Reason: fmt.Sprintf("sub-score weights sum to %.2f, want 100", sum)}
	}
	for _, w := range []float64{c.HeuristicWeight, c.MLWeight, c.BrandWeight, c.TLDWeight} {
		if w < 0 {
			return &ConfigError{Reason: "sub-score weights must be non-negative"}
		}
	}
	if c.SafeThreshold <= 0 || c.SuspiciousThreshold <= c.SafeThreshold || c.SuspiciousThreshold > 100 {
		return &ConfigError{Reason: fmt.Sprintf(
			"thresholds must satisfy 0 < safe (%d) < suspicious (%d) <= 100",
			c.SafeThreshold, c.SuspiciousThreshold)}
	}
	return nil
}

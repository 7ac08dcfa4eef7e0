package services

import (
	"math"
	"time"

	"github.com/datwatch/verifier/config"
)

// Severity classifies one observation's deviation from canonical.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMinor
	SeverityMajor
)

// Policy holds the reconciliation knobs. Thresholds are percentages: a
// MinorThresholdPct of 0.01 means deviations under 0.01% count as a match.
type Policy struct {
	MinorThresholdPct  float64
	MajorThresholdPct  float64
	StrictTolerancePct float64
	DismissLookback    time.Duration
	// AutoApproveQuorum is the number of agreeing sources required before
	// the engine may write canonical itself. Zero means every reporting
	// source must agree.
	AutoApproveQuorum int
	// MinConfidence is the floor for a source to count toward auto-approval.
	MinConfidence float64
	// Epsilon floors the deviation denominator so an absent (zero) canonical
	// does not divide by zero.
	Epsilon float64
}

// DefaultPolicy returns the conservative defaults.
func DefaultPolicy() Policy {
	return Policy{
		MinorThresholdPct:  0.01,
		MajorThresholdPct:  5.0,
		StrictTolerancePct: 0.1,
		DismissLookback:    30 * 24 * time.Hour,
		AutoApproveQuorum:  0,
		MinConfidence:      0.5,
		Epsilon:            1e-9,
	}
}

// PolicyFromConfig lifts the env-configured knobs into a Policy.
func PolicyFromConfig(cfg *config.Config) Policy {
	p := DefaultPolicy()
	p.MinorThresholdPct = cfg.MinorThresholdPct
	p.MajorThresholdPct = cfg.MajorThresholdPct
	p.StrictTolerancePct = cfg.StrictTolerancePct
	p.DismissLookback = cfg.DismissLookback
	p.AutoApproveQuorum = cfg.AutoApproveQuorum
	p.MinConfidence = cfg.MinConfidence
	return p
}

// DeviationPct returns |observed - canonical| as a percentage of canonical,
// with the denominator floored at Epsilon.
func (p Policy) DeviationPct(observed, canonical float64) float64 {
	denom := math.Abs(canonical)
	if denom < p.Epsilon {
		denom = p.Epsilon
	}
	return math.Abs(observed-canonical) / denom * 100
}

// Classify buckets a deviation percentage.
func (p Policy) Classify(deviationPct float64) Severity {
	switch {
	case deviationPct < p.MinorThresholdPct:
		return SeverityNone
	case deviationPct < p.MajorThresholdPct:
		return SeverityMinor
	default:
		return SeverityMajor
	}
}

// WithinStrictTolerance reports whether current is within the dismissal
// tolerance of a previously adjudicated value.
func (p Policy) WithinStrictTolerance(dismissed, current float64) bool {
	return math.Abs(dismissed-current) <= math.Abs(dismissed)*p.StrictTolerancePct/100
}

package analysis

import (
	"fmt"
	"math"
)

const (
	polarizedZ1Min     = 75.0
	polarizedZ2Max     = 10.0
	polarizedZ3Min     = 15.0
	z2CreepThreshold   = 20.0
	tempoZ2Min         = 25.0
	tempoZ3Max         = 10.0
	thresholdFocusZ2Lo = 20.0
	thresholdFocusZ2Hi = 40.0
	thresholdFocusZ3   = 10.0

	// percentages summing within this of 100 are left as-is
	normalizeTolerance = 0.01
)

// Distribution is the share of training time per zone, in percent
type Distribution struct {
	Z1 float64
	Z2 float64
	Z3 float64
}

// NewDistribution builds a distribution from pre-computed percentages,
// re-normalizing when their sum is off from 100 by more than rounding noise
func NewDistribution(z1, z2, z3 float64) Distribution {
	total := z1 + z2 + z3
	if total > 0 && math.Abs(total-100) > normalizeTolerance {
		return Distribution{
			Z1: z1 / total * 100,
			Z2: z2 / total * 100,
			Z3: z3 / total * 100,
		}
	}
	return Distribution{Z1: z1, Z2: z2, Z3: z3}
}

// DistributionFromMinutes converts time-in-zone minutes to percentages.
// Zero total minutes gives an all-zero distribution.
func DistributionFromMinutes(z1, z2, z3 float64) Distribution {
	total := z1 + z2 + z3
	if total == 0 {
		return Distribution{}
	}
	return NewDistribution(
		safeDiv(z1, total, 0)*100,
		safeDiv(z2, total, 0)*100,
		safeDiv(z3, total, 0)*100,
	)
}

// IsPolarized follows Seiler's ~80/10/10 model
func (d Distribution) IsPolarized() bool {
	return d.Z1 >= polarizedZ1Min && d.Z3 >= polarizedZ3Min && d.Z2 <= polarizedZ2Max
}

// HasZ2Creep reports excess moderate-intensity time
func (d Distribution) HasZ2Creep() bool {
	return d.Z2 > z2CreepThreshold
}

// IsTempoHeavy reports a lot of Z2 with little Z3
func (d Distribution) IsTempoHeavy() bool {
	return d.Z2 > tempoZ2Min && d.Z3 < tempoZ3Max
}

// IsThresholdFocus reports high-but-bounded Z2 with meaningful Z3
func (d Distribution) IsThresholdFocus() bool {
	return d.Z2 > thresholdFocusZ2Lo && d.Z2 <= thresholdFocusZ2Hi && d.Z3 >= thresholdFocusZ3
}

// MeetsPolarizedTargets checks a planned distribution against polarized targets
func MeetsPolarizedTargets(d Distribution) bool {
	return d.IsPolarized()
}

// DetectZ2Creep reports whether any of the given weeks shows Z2 creep
func DetectZ2Creep(weeks []Distribution) bool {
	for _, w := range weeks {
		if w.HasZ2Creep() {
			return true
		}
	}
	return false
}

// Recommendation texts
const (
	RecommendZ2Creep        = "Z2_CREEP: Zone 2 training exceeds 20%. Consider adding more polarized intervals."
	RecommendPolarized      = "Good polarized distribution maintained."
	RecommendTempoHeavy     = "Tempo-heavy distribution detected. Consider adding more high-intensity intervals."
	RecommendThresholdFocus = "Threshold-focused training. Ensure adequate recovery between sessions."
	RecommendWithinRange    = "Distribution within acceptable ranges."
)

type distributionRule struct {
	matches func(Distribution) bool
	text    string
}

// distributionRules is evaluated in order; the first match wins
var distributionRules = []distributionRule{
	{Distribution.HasZ2Creep, RecommendZ2Creep},
	{Distribution.IsPolarized, RecommendPolarized},
	{Distribution.IsTempoHeavy, RecommendTempoHeavy},
	{Distribution.IsThresholdFocus, RecommendThresholdFocus},
}

// Recommendation picks the text for the first matching distribution rule
func (d Distribution) Recommendation() string {
	for _, rule := range distributionRules {
		if rule.matches(d) {
			return rule.text
		}
	}
	return RecommendWithinRange
}

// DistributionAnalysis is the result of analyzing one period's time-in-zone
type DistributionAnalysis struct {
	Distribution     Distribution
	HasZ2Creep       bool
	IsPolarized      bool
	IsTempoHeavy     bool
	IsThresholdFocus bool
	Recommendation   string
}

// AnalyzeDistribution classifies a period's time-in-zone.
// Missing zones count as zero minutes; negative minutes are rejected.
func AnalyzeDistribution(zoneMinutes map[Zone]float64) (DistributionAnalysis, error) {
	for zone, minutes := range zoneMinutes {
		if minutes < 0 {
			return DistributionAnalysis{}, fmt.Errorf("%s minutes %v: %w", zone, minutes, ErrNegativeValue)
		}
	}
	d := DistributionFromMinutes(zoneMinutes[Z1], zoneMinutes[Z2], zoneMinutes[Z3])
	return DistributionAnalysis{
		Distribution:     d,
		HasZ2Creep:       d.HasZ2Creep(),
		IsPolarized:      d.IsPolarized(),
		IsTempoHeavy:     d.IsTempoHeavy(),
		IsThresholdFocus: d.IsThresholdFocus(),
		Recommendation:   d.Recommendation(),
	}, nil
}

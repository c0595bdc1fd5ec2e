package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestDistributionFromMinutes(t *testing.T) {
	tests := []struct {
		name       string
		z1, z2, z3 float64
		expected   Distribution
	}{
		{"zero minutes", 0, 0, 0, Distribution{}},
		{"even split", 60, 60, 60, Distribution{Z1: 100.0 / 3, Z2: 100.0 / 3, Z3: 100.0 / 3}},
		{"all Z1", 120, 0, 0, Distribution{Z1: 100}},
		{"80/10/10", 80, 10, 10, Distribution{Z1: 80, Z2: 10, Z3: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistributionFromMinutes(tt.z1, tt.z2, tt.z3)
			if math.Abs(got.Z1-tt.expected.Z1) > 1e-9 ||
				math.Abs(got.Z2-tt.expected.Z2) > 1e-9 ||
				math.Abs(got.Z3-tt.expected.Z3) > 1e-9 {
				t.Errorf("DistributionFromMinutes(%v, %v, %v) = %+v, want %+v", tt.z1, tt.z2, tt.z3, got, tt.expected)
			}
			if math.IsNaN(got.Z1) || math.IsNaN(got.Z2) || math.IsNaN(got.Z3) {
				t.Errorf("DistributionFromMinutes produced NaN: %+v", got)
			}
		})
	}
}

func TestNewDistribution_Normalizes(t *testing.T) {
	d := NewDistribution(40, 5, 5)
	if math.Abs(d.Z1-80) > 1e-9 || math.Abs(d.Z2-10) > 1e-9 || math.Abs(d.Z3-10) > 1e-9 {
		t.Errorf("NewDistribution(40, 5, 5) = %+v, want 80/10/10", d)
	}

	// within rounding tolerance stays untouched
	d = NewDistribution(33.33, 33.33, 33.335)
	if d.Z3 != 33.335 {
		t.Errorf("NewDistribution within tolerance changed Z3 to %v", d.Z3)
	}
}

func TestDistributionPredicates(t *testing.T) {
	tests := []struct {
		name             string
		d                Distribution
		polarized        bool
		z2Creep          bool
		tempoHeavy       bool
		thresholdFocused bool
	}{
		{"polarized", Distribution{Z1: 75, Z2: 10, Z3: 15}, true, false, false, false},
		{"80/10/10 is short of Z3 target", DistributionFromMinutes(80, 10, 10), false, false, false, false},
		{"tempo heavy", DistributionFromMinutes(50, 30, 5), false, true, true, false},
		{"threshold focused", Distribution{Z1: 60, Z2: 30, Z3: 10}, false, true, false, true},
		{"Z2 exactly 20", Distribution{Z1: 70, Z2: 20, Z3: 10}, false, false, false, false},
		{"Z2 exactly 40", Distribution{Z1: 40, Z2: 40, Z3: 20}, false, true, false, true},
		{"Z2 above 40", Distribution{Z1: 30, Z2: 50, Z3: 20}, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.IsPolarized(); got != tt.polarized {
				t.Errorf("IsPolarized() = %v, want %v", got, tt.polarized)
			}
			if got := tt.d.HasZ2Creep(); got != tt.z2Creep {
				t.Errorf("HasZ2Creep() = %v, want %v", got, tt.z2Creep)
			}
			if got := tt.d.IsTempoHeavy(); got != tt.tempoHeavy {
				t.Errorf("IsTempoHeavy() = %v, want %v", got, tt.tempoHeavy)
			}
			if got := tt.d.IsThresholdFocus(); got != tt.thresholdFocused {
				t.Errorf("IsThresholdFocus() = %v, want %v", got, tt.thresholdFocused)
			}
		})
	}
}

func TestDistributionRecommendation(t *testing.T) {
	tests := []struct {
		name     string
		d        Distribution
		expected string
	}{
		{"Z2 creep wins over tempo heavy", Distribution{Z1: 50, Z2: 45, Z3: 5}, RecommendZ2Creep},
		{"polarized", Distribution{Z1: 80, Z2: 5, Z3: 15}, RecommendPolarized},
		{"nothing matches", Distribution{Z1: 85, Z2: 10, Z3: 5}, RecommendWithinRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Recommendation(); got != tt.expected {
				t.Errorf("Recommendation() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAnalyzeDistribution(t *testing.T) {
	a, err := AnalyzeDistribution(map[Zone]float64{Z1: 300, Z2: 20, Z3: 80})
	if err != nil {
		t.Fatalf("AnalyzeDistribution error: %v", err)
	}
	if !a.IsPolarized || a.HasZ2Creep {
		t.Errorf("analysis = %+v, want polarized without Z2 creep", a)
	}
	if a.Recommendation != RecommendPolarized {
		t.Errorf("Recommendation = %q, want %q", a.Recommendation, RecommendPolarized)
	}

	a, err = AnalyzeDistribution(nil)
	if err != nil {
		t.Fatalf("AnalyzeDistribution(nil) error: %v", err)
	}
	if a.Distribution != (Distribution{}) {
		t.Errorf("empty analysis distribution = %+v, want zero", a.Distribution)
	}

	if _, err := AnalyzeDistribution(map[Zone]float64{Z2: -5}); !errors.Is(err, ErrNegativeValue) {
		t.Errorf("negative minutes error = %v, want ErrNegativeValue", err)
	}
}

func TestDetectZ2Creep(t *testing.T) {
	weeks := []Distribution{{Z1: 80, Z2: 5, Z3: 15}, {Z1: 60, Z2: 25, Z3: 15}}
	if !DetectZ2Creep(weeks) {
		t.Error("DetectZ2Creep should flag the second week")
	}
	if DetectZ2Creep(weeks[:1]) {
		t.Error("DetectZ2Creep should not flag a polarized week")
	}
	if !MeetsPolarizedTargets(weeks[0]) {
		t.Error("MeetsPolarizedTargets should accept 80/5/15")
	}
}

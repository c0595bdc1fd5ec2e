package analysis

import (
	"fmt"
	"strings"
	"time"
)

// Guardrail rule ids
const (
	RuleFatigue   = "SG-FATIGUE-001"
	RuleSoreness  = "SG-SORENESS-001"
	RuleReadiness = "SG-READINESS-001"
	RuleLoadRamp  = "SG-LOAD-001"
	RuleRecovery  = "SG-RECOVERY-001"
	RuleAIFilter  = "SG-AI-001"
	RuleOverride  = "SG-OVERRIDE-001"
)

const (
	highFatigueThreshold  = 7.0
	highSorenessThreshold = 7.0
	// readiness here is on the 0-10 scale
	lowReadinessThreshold = 4.0

	loadRampCapPercent     = 15.0
	minRecoveryDays        = 2
	suggestionReadinessMin = 40.0
)

// Safe alternatives offered with a block
const (
	AltRecoveryRide   = "Schedule a recovery ride (Zone 1) or rest day"
	AltActiveRecovery = "Schedule active recovery (Zone 1 spin, mobility) instead"
	AltLowIntensity   = "Replace with a low-intensity endurance session (Zone 1-2)"
	AltRecoveryDays   = "Schedule active recovery (Zone 1), rest day, or endurance ride (Zone 2)"
)

// GuardrailDecision is the outcome of one guardrail check
type GuardrailDecision struct {
	Blocked         bool
	RuleID          string
	BlockingRule    string
	SafeAlternative string
	Notifications   []string
}

// Approved is a decision that lets the request through
func Approved() GuardrailDecision {
	return GuardrailDecision{}
}

func blocked(ruleID, reason, alternative string) GuardrailDecision {
	return GuardrailDecision{
		Blocked:         true,
		RuleID:          ruleID,
		BlockingRule:    reason,
		SafeAlternative: alternative,
		Notifications:   []string{"athlete", "coach"},
	}
}

// GuardrailInput is the athlete state a rule is evaluated against
type GuardrailInput struct {
	Fatigue   float64
	Soreness  float64
	Readiness float64
}

type guardrailRule struct {
	id          string
	matches     func(GuardrailInput) bool
	reason      func(GuardrailInput) string
	alternative string
}

// adjustmentRules is evaluated in order; the first match wins
var adjustmentRules = []guardrailRule{
	{
		id:      RuleFatigue,
		matches: func(in GuardrailInput) bool { return in.Fatigue >= highFatigueThreshold },
		reason: func(in GuardrailInput) string {
			return fmt.Sprintf("High fatigue (%.0f/10) detected. High-intensity workouts are blocked.", in.Fatigue)
		},
		alternative: AltRecoveryRide,
	},
	{
		id:      RuleSoreness,
		matches: func(in GuardrailInput) bool { return in.Soreness >= highSorenessThreshold },
		reason: func(in GuardrailInput) string {
			return fmt.Sprintf("High muscle soreness (%.0f/10) detected. High-intensity workouts are blocked.", in.Soreness)
		},
		alternative: AltActiveRecovery,
	},
	{
		id:      RuleReadiness,
		matches: func(in GuardrailInput) bool { return in.Readiness <= lowReadinessThreshold },
		reason: func(in GuardrailInput) string {
			return fmt.Sprintf("Low readiness (%.1f/10). High-intensity workouts are blocked.", in.Readiness)
		},
		alternative: AltLowIntensity,
	},
}

// IsHighIntensity reports whether workoutType is gated by the guardrails (case-insensitive)
func IsHighIntensity(workoutType string) bool {
	switch WorkoutType(strings.ToUpper(strings.TrimSpace(workoutType))) {
	case WorkoutIntervals, WorkoutVO2Max, WorkoutThreshold, WorkoutSprint:
		return true
	}
	return false
}

// CheckGuardrail gates a high-intensity adjustment. Fatigue and soreness are 1-10
// scores and readiness is on a 0-10 scale. At most one rule is reported.
func CheckGuardrail(workoutType string, fatigue, soreness, readiness float64) GuardrailDecision {
	if !IsHighIntensity(workoutType) {
		return Approved()
	}
	in := GuardrailInput{Fatigue: fatigue, Soreness: soreness, Readiness: readiness}
	for _, rule := range adjustmentRules {
		if rule.matches(in) {
			return blocked(rule.id, rule.reason(in), rule.alternative)
		}
	}
	return Approved()
}

// CheckLoadRamp blocks a proposed weekly load more than 15% above the current one.
// A zero current load has no baseline and is always approved.
func CheckLoadRamp(currentWeeklyTSS, proposedWeeklyTSS float64) GuardrailDecision {
	if currentWeeklyTSS <= 0 {
		return Approved()
	}
	ramp := (proposedWeeklyTSS - currentWeeklyTSS) / currentWeeklyTSS * 100
	if ramp <= loadRampCapPercent {
		return Approved()
	}
	maxSafe := MaxSafeWeeklyLoad(currentWeeklyTSS)
	return blocked(
		RuleLoadRamp,
		fmt.Sprintf("Load increase of %.1f%% exceeds the %.1f%% weekly ramp cap.", ramp, loadRampCapPercent),
		fmt.Sprintf("Maximum safe load: %.0f TSS", maxSafe),
	)
}

// MaxSafeWeeklyLoad is the highest weekly TSS the ramp cap allows
func MaxSafeWeeklyLoad(currentWeeklyTSS float64) float64 {
	return currentWeeklyTSS * (1 + loadRampCapPercent/100)
}

// CheckRecoveryDays requires at least two days between high-intensity sessions.
// lastHighIntensity is nil when there is no prior session on record.
func CheckRecoveryDays(workoutType string, lastHighIntensity *time.Time, on time.Time) GuardrailDecision {
	if !IsHighIntensity(workoutType) || lastHighIntensity == nil {
		return Approved()
	}
	since := daysBetween(*lastHighIntensity, on)
	if since >= minRecoveryDays {
		return Approved()
	}
	return blocked(
		RuleRecovery,
		fmt.Sprintf("Only %d day(s) since last high-intensity session. Minimum %d recovery days required.", since, minRecoveryDays),
		AltRecoveryDays,
	)
}

// unsafeSuggestionPhrases mark a suggestion as unsafe for a poorly recovered athlete
var unsafeSuggestionPhrases = []string{
	"increase interval intensity",
	"extra vo2 max",
	"add extra sprint",
}

// IsUnsafeSuggestion reports whether a coaching suggestion pushes intensity
func IsUnsafeSuggestion(suggestion string) bool {
	lower := strings.ToLower(suggestion)
	for _, phrase := range unsafeSuggestionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return strings.Contains(lower, "hard") && strings.Contains(lower, "workout")
}

// FilterSuggestions drops unsafe suggestions when readiness (0-100) is below 40.
// It returns the kept and rejected suggestions.
func FilterSuggestions(readiness float64, suggestions []string) (kept, rejected []string) {
	if readiness >= suggestionReadinessMin {
		return suggestions, nil
	}
	for _, s := range suggestions {
		if IsUnsafeSuggestion(s) {
			rejected = append(rejected, s)
		} else {
			kept = append(kept, s)
		}
	}
	return kept, rejected
}

// Override re-opens a blocked decision on an admin's authority.
// Non-blocked decisions are returned unchanged.
func Override(d GuardrailDecision, admin, justification string) (GuardrailDecision, error) {
	if !d.Blocked {
		return d, nil
	}
	if strings.TrimSpace(admin) == "" || strings.TrimSpace(justification) == "" {
		return d, fmt.Errorf("override of %s requires an admin and a justification", d.RuleID)
	}
	return GuardrailDecision{
		Blocked:         false,
		RuleID:          d.RuleID,
		BlockingRule:    "GUARDRAIL OVERRIDE: " + d.RuleID,
		SafeAlternative: fmt.Sprintf("Justification: %s | Approved by: %s", justification, admin),
		Notifications:   []string{"coach", "admin"},
	}, nil
}

package analysis

import (
	"fmt"
	"strings"
)

const (
	insightLowReadiness = 50.0
	highNegativeTSB     = -20.0
	lowSleepHours       = 6.0
	highVolumeHours     = 15.0

	criticalReadiness = 30.0
	moderateReadiness = 50.0
	chronicSleepDays  = 3
)

// Insights holds human-readable observations for a reporting period
type Insights struct {
	Flags               []string
	Recommendations     []string
	Achievements        []string
	ComplianceRate      int
	TrainingVolumeHours float64
}

// GenerateInsights turns trends, the latest snapshot and compliance into report lines.
// latest may be nil.
func GenerateInsights(trends WellnessTrends, latest *WellnessSnapshot, complianceRate int, volumeHours float64) Insights {
	in := Insights{ComplianceRate: complianceRate, TrainingVolumeHours: volumeHours}

	if trends.AverageReadiness < insightLowReadiness {
		in.Flags = append(in.Flags, "Average readiness score below 50 - athlete may be fatigued")
		in.Recommendations = append(in.Recommendations,
			"Consider reducing training load for 1-2 days",
			"Focus on recovery activities and sleep hygiene")
	}
	if trends.HRV.IsDeclining() {
		in.Flags = append(in.Flags, "HRV trending downward - possible overreaching")
		in.Recommendations = append(in.Recommendations, "Monitor closely for signs of overtraining")
	}
	if trends.SleepHours.IsDeclining() {
		in.Flags = append(in.Flags, "Sleep duration decreasing")
		in.Recommendations = append(in.Recommendations, "Prioritize sleep hygiene and recovery")
	}
	if latest != nil && latest.Load != nil && latest.Load.TSB < highNegativeTSB {
		in.Flags = append(in.Flags, "Training Stress Balance heavily negative - high fatigue")
		in.Recommendations = append(in.Recommendations, "Consider an easy day or rest day")
	}

	switch {
	case complianceRate >= 90:
		in.Achievements = append(in.Achievements, fmt.Sprintf("Excellent training compliance (%d%%)", complianceRate))
	case complianceRate >= 80:
		in.Achievements = append(in.Achievements, fmt.Sprintf("Good training compliance (%d%%)", complianceRate))
	}
	if trends.Readiness.IsImproving() {
		in.Achievements = append(in.Achievements, "Readiness improving over the period")
	}
	if trends.HRV.IsImproving() {
		in.Achievements = append(in.Achievements, "HRV improving - athlete adapting well to training")
	}

	if complianceRate < 70 {
		in.Recommendations = append(in.Recommendations, "Training compliance below 70% - review schedule")
	}
	if volumeHours > highVolumeHours {
		in.Recommendations = append(in.Recommendations, "High training volume - ensure adequate recovery")
	}
	return in
}

// HardRule is a recovery rule triggered by the athlete's current state
type HardRule struct {
	Name           string
	Condition      string
	Recommendation string
	Blocking       bool
}

// RecoveryPlan is the rule-based part of a recovery recommendation
type RecoveryPlan struct {
	AthleteID       string
	Readiness       float64
	HardRules       []HardRule
	SafeAdjustments []string
}

// HasBlockingRules reports whether any triggered rule forbids training
func (r RecoveryPlan) HasBlockingRules() bool {
	for _, h := range r.HardRules {
		if h.Blocking {
			return true
		}
	}
	return false
}

// RuleNames lists the triggered rule names in order
func (r RecoveryPlan) RuleNames() []string {
	names := make([]string, len(r.HardRules))
	for i, h := range r.HardRules {
		names[i] = h.Name
	}
	return names
}

// RecommendRecovery applies the recovery hard rules to a chronological window of snapshots.
// The last snapshot is treated as the athlete's current state.
func RecommendRecovery(athleteID string, snapshots []WellnessSnapshot, trends WellnessTrends) RecoveryPlan {
	plan := RecoveryPlan{AthleteID: athleteID}
	if len(snapshots) == 0 {
		return plan
	}
	latest := snapshots[len(snapshots)-1]
	plan.Readiness = latest.Readiness

	switch {
	case latest.Readiness < criticalReadiness:
		plan.HardRules = append(plan.HardRules, HardRule{
			Name:           "CRITICAL_LOW_READINESS",
			Condition:      "Readiness score below 30",
			Recommendation: "REST DAY REQUIRED - Athlete is severely fatigued. No training recommended.",
			Blocking:       true,
		})
	case latest.Readiness < moderateReadiness:
		plan.HardRules = append(plan.HardRules, HardRule{
			Name:           "LOW_READINESS",
			Condition:      "Readiness score between 30-50",
			Recommendation: "Consider reducing training intensity. Focus on recovery workouts.",
		})
	}

	if trends.HRV.IsDeclining() {
		plan.HardRules = append(plan.HardRules, HardRule{
			Name:           "DECLINING_HRV",
			Condition:      "HRV trending downward",
			Recommendation: "Monitor for signs of overreaching. Consider reducing training load.",
		})
	}

	lowSleep := 0
	for _, s := range snapshots {
		if s.Physiological != nil && s.Physiological.Sleep != nil && s.Physiological.Sleep.Hours < lowSleepHours {
			lowSleep++
		}
	}
	if lowSleep >= chronicSleepDays {
		plan.HardRules = append(plan.HardRules, HardRule{
			Name:           "CHRONIC_SLEEP_DEBT",
			Condition:      fmt.Sprintf("Less than 6 hours sleep for %d+ days", chronicSleepDays),
			Recommendation: "Prioritize sleep hygiene. Reduce training to allow recovery.",
		})
	}

	if latest.Load != nil && latest.Load.TSB < highNegativeTSB {
		plan.HardRules = append(plan.HardRules, HardRule{
			Name:           "HIGH_FATIGUE_TSB",
			Condition:      "Training Stress Balance below -20",
			Recommendation: "High accumulated fatigue. Consider easy day or rest day.",
		})
	}

	switch {
	case latest.Readiness >= moderateReadiness:
		plan.SafeAdjustments = []string{
			"Maintain current training plan",
			"Include 1-2 recovery-focused workouts this week",
		}
	case latest.Readiness >= criticalReadiness:
		plan.SafeAdjustments = []string{
			"Reduce training volume by 20%",
			"Replace high-intensity intervals with steady endurance",
			"Add extra recovery day",
		}
	default:
		plan.SafeAdjustments = []string{
			"Rest day recommended",
			"Light activity only (walking, stretching)",
			"Focus on sleep and nutrition",
		}
	}
	if trends.Readiness.IsImproving() {
		plan.SafeAdjustments = append(plan.SafeAdjustments, "Readiness improving - gradual load increase OK")
	}
	return plan
}

// BuildCoachingPrompt renders the prompt handed to the text generator
func BuildCoachingPrompt(plan RecoveryPlan, trends WellnessTrends) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate recovery recommendations for athlete %s. ", plan.AthleteID)
	fmt.Fprintf(&b, "Current readiness: %.1f/100. ", plan.Readiness)
	fmt.Fprintf(&b, "HRV trend: %s. ", trends.HRV)
	fmt.Fprintf(&b, "Sleep trend: %s. ", trends.SleepHours)
	fmt.Fprintf(&b, "Average sleep hours: %.1f. ", trends.AverageSleepHours)
	if len(plan.HardRules) > 0 {
		fmt.Fprintf(&b, "Hard rules triggered: %s. ", strings.Join(plan.RuleNames(), ", "))
	}
	b.WriteString("Provide specific, actionable recovery advice. Keep response under 200 words.")
	return b.String()
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"training-coach/internal/analysis"
	"training-coach/internal/store"
)

// TextGenerator turns a fully-formed prompt into free text
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CoachingService gates adjustments and assembles reports
type CoachingService struct {
	store     *store.Store
	load      *LoadService
	generator TextGenerator
	log       zerolog.Logger
	metrics   *Metrics
	now       func() time.Time
}

// NewCoachingService creates a new coaching service. generator may be nil.
func NewCoachingService(st *store.Store, load *LoadService, generator TextGenerator, log zerolog.Logger, metrics *Metrics) *CoachingService {
	return &CoachingService{
		store:     st,
		load:      load,
		generator: generator,
		log:       log.With().Str("service", "coaching").Logger(),
		metrics:   metrics,
		now:       time.Now,
	}
}

// AdjustmentResult is a guardrail decision with its audit id
type AdjustmentResult struct {
	AuditID  string
	Decision analysis.GuardrailDecision
}

// CheckAdjustment decides whether workoutType may be scheduled on date,
// using the day's check-in and the athlete's recent high-intensity history
func (s *CoachingService) CheckAdjustment(ctx context.Context, athleteID string, date time.Time, workoutType string) (AdjustmentResult, error) {
	snap, err := s.store.GetSnapshot(ctx, athleteID, date)
	if err != nil {
		return AdjustmentResult{}, fmt.Errorf("reading check-in: %w", err)
	}

	var fatigue, soreness float64
	if snap.Subjective != nil {
		fatigue = float64(snap.Subjective.Fatigue)
		soreness = float64(snap.Subjective.Soreness)
	}
	decision := analysis.CheckGuardrail(workoutType, fatigue, soreness, snap.Readiness/ReadinessGuardrailScale)

	if !decision.Blocked {
		day := analysis.Day(date)
		last, err := s.store.LastHighIntensityDate(ctx, athleteID, day.AddDate(0, 0, -1))
		if err != nil {
			return AdjustmentResult{}, err
		}
		decision = analysis.CheckRecoveryDays(workoutType, last, day)
	}

	return s.record(ctx, athleteID, decision, SystemActor, "")
}

// CheckWeeklyLoad gates a proposed weekly TSS against the trailing week
func (s *CoachingService) CheckWeeklyLoad(ctx context.Context, athleteID string, weekStart time.Time, proposedTSS float64) (AdjustmentResult, error) {
	current, err := s.load.WeeklyTSS(ctx, athleteID, weekStart)
	if err != nil {
		return AdjustmentResult{}, err
	}
	return s.record(ctx, athleteID, analysis.CheckLoadRamp(current, proposedTSS), SystemActor, "")
}

// Override re-opens a blocked decision on an admin's authority and audits it
func (s *CoachingService) Override(ctx context.Context, athleteID string, d analysis.GuardrailDecision, admin, justification string) (AdjustmentResult, error) {
	overridden, err := analysis.Override(d, admin, justification)
	if err != nil {
		return AdjustmentResult{}, err
	}
	if !d.Blocked {
		return AdjustmentResult{Decision: overridden}, nil
	}
	return s.record(ctx, athleteID, overridden, admin, justification)
}

func (s *CoachingService) record(ctx context.Context, athleteID string, d analysis.GuardrailDecision, actor, justification string) (AdjustmentResult, error) {
	outcome := store.DecisionApproved
	switch {
	case d.Blocked:
		outcome = store.DecisionBlocked
	case strings.HasPrefix(d.BlockingRule, "GUARDRAIL OVERRIDE"):
		outcome = store.DecisionOverridden
	}
	rule := d.RuleID
	if outcome == store.DecisionOverridden {
		rule = analysis.RuleOverride
	}
	if rule == "" {
		rule = "none"
	}

	entry := store.AuditEntry{
		ID:            uuid.NewString(),
		AthleteID:     athleteID,
		RuleID:        rule,
		Decision:      outcome,
		Reason:        d.BlockingRule,
		PerformedBy:   actor,
		Justification: justification,
		CreatedAt:     s.now(),
	}
	if err := s.store.InsertAudit(ctx, entry); err != nil {
		return AdjustmentResult{}, err
	}

	if s.metrics != nil {
		s.metrics.CounterGuardrailDecisions.WithLabelValues(rule, outcome).Inc()
	}
	ev := s.log.Info()
	if d.Blocked {
		ev = s.log.Warn()
	}
	ev.Str("athlete", athleteID).Str("rule", rule).Str("decision", outcome).Str("audit_id", entry.ID).Msg("guardrail decision")

	return AdjustmentResult{AuditID: entry.ID, Decision: d}, nil
}

// Compliance compares planned and completed work over [start, end]
func (s *CoachingService) Compliance(ctx context.Context, athleteID string, start, end time.Time) (analysis.ComplianceSummary, error) {
	planned, err := s.store.ListPlannedWorkouts(ctx, athleteID, start, end)
	if err != nil {
		return analysis.ComplianceSummary{}, err
	}
	activities, err := s.store.ListActivities(ctx, athleteID, start, end)
	if err != nil {
		return analysis.ComplianceSummary{}, err
	}

	completed := make([]analysis.CompletedActivity, 0, len(activities))
	zoneMinutes := map[analysis.Zone]float64{}
	classifications := make(map[string]string)
	for _, a := range activities {
		c, err := a.Completed()
		if err != nil {
			return analysis.ComplianceSummary{}, fmt.Errorf("activity %s: %w", a.ExternalID, err)
		}
		completed = append(completed, c)
		for z, m := range a.ZoneMinutes() {
			zoneMinutes[z] += m
		}
		if a.Classification != "" {
			classifications[a.ExternalID] = a.Classification
		}
	}

	return analysis.SummarizeCompliance(planned, completed, zoneMinutes, classifications, start, end), nil
}

// Report is the weekly coaching report
type Report struct {
	AthleteID           string
	Start               time.Time
	End                 time.Time
	Snapshots           []analysis.WellnessSnapshot
	Trends              analysis.WellnessTrends
	Compliance          analysis.ComplianceSummary
	Insights            analysis.Insights
	Recovery            analysis.RecoveryPlan
	Prompt              string
	CoachText           string
	Suggestions         []string
	RejectedSuggestions []string
	UsedFallback        bool
}

// WeeklyReport assembles trends, insights and recovery advice for [start, end]
// and asks the text generator for coaching notes
func (s *CoachingService) WeeklyReport(ctx context.Context, athleteID string, start, end time.Time) (*Report, error) {
	snaps, err := s.store.ListSnapshots(ctx, athleteID, start, end)
	if err != nil {
		return nil, err
	}
	compliance, err := s.Compliance(ctx, athleteID, start, end)
	if err != nil {
		return nil, err
	}
	activities, err := s.store.ListActivities(ctx, athleteID, start, end)
	if err != nil {
		return nil, err
	}

	var volumeSeconds float64
	for _, a := range activities {
		volumeSeconds += a.DurationSeconds
	}

	trends := analysis.CalculateWellnessTrends(snaps)
	var latest *analysis.WellnessSnapshot
	if len(snaps) > 0 {
		latest = &snaps[len(snaps)-1]
	}

	r := &Report{
		AthleteID:  athleteID,
		Start:      analysis.Day(start),
		End:        analysis.Day(end),
		Snapshots:  snaps,
		Trends:     trends,
		Compliance: compliance,
		Insights:   analysis.GenerateInsights(trends, latest, int(compliance.CompletionPercent+0.5), volumeSeconds/3600),
		Recovery:   analysis.RecommendRecovery(athleteID, snaps, trends),
	}
	r.Prompt = analysis.BuildCoachingPrompt(r.Recovery, trends)

	r.CoachText = s.generate(ctx, r.Prompt)
	r.UsedFallback = r.CoachText == FallbackCoachText
	if !r.UsedFallback {
		r.Suggestions, r.RejectedSuggestions = analysis.FilterSuggestions(r.Recovery.Readiness, splitSuggestions(r.CoachText))
		if n := len(r.RejectedSuggestions); n > 0 && s.metrics != nil {
			s.metrics.CounterSuggestionsRejected.Add(float64(n))
		}
	}

	return r, nil
}

func (s *CoachingService) generate(ctx context.Context, prompt string) string {
	if s.generator == nil {
		s.fallback(nil)
		return FallbackCoachText
	}
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		s.fallback(err)
		return FallbackCoachText
	}
	return text
}

func (s *CoachingService) fallback(err error) {
	if s.metrics != nil {
		s.metrics.CounterCoachFallbacks.Inc()
	}
	s.log.Warn().Err(err).Msg("coach text unavailable, using fallback")
}

// splitSuggestions turns generated text into one suggestion per non-empty line,
// without list markers
func splitSuggestions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

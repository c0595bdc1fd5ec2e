package service

const (
	// Readiness is stored on 0-100; the guardrail works on 0-10
	ReadinessGuardrailScale = 10

	// Time windows
	ReportDays        = 7
	DashboardDays     = 28
	LoadRampLookback  = 7
	RecomputeMaxAhead = 41

	// Shown when the coach endpoint is unavailable
	FallbackCoachText = "AI recommendations temporarily unavailable."

	// System actor for automatic guardrail decisions
	SystemActor = "system"
)

const (
	// Dashboard
	RecentActivitiesLimit = 10
	EFCurrentPeriodDays   = 7
	EFTrendCompareDays    = 28
	ChartWeeks            = 12
)

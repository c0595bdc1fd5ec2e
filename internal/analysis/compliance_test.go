package analysis

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func mustPlan(t *testing.T, id string, offset int, typ WorkoutType, minutes float64, d Distribution) PlannedWorkout {
	t.Helper()
	p, err := NewPlannedWorkout(id, day(offset), typ, minutes, d)
	if err != nil {
		t.Fatalf("NewPlannedWorkout(%s) error: %v", id, err)
	}
	return p
}

func TestSummarizeCompliance(t *testing.T) {
	planned := []PlannedWorkout{
		mustPlan(t, "p1", 0, WorkoutEndurance, 60, Distribution{Z1: 80, Z2: 10, Z3: 10}),
		mustPlan(t, "p2", 2, WorkoutThreshold, 60, Distribution{Z1: 60, Z2: 20, Z3: 20}),
		mustPlan(t, "p3", 4, WorkoutIntervals, 60, Distribution{Z1: 70, Z2: 10, Z3: 20}),
		mustPlan(t, "p4", 10, WorkoutIntervals, 60, Distribution{Z1: 70, Z2: 10, Z3: 20}),
	}
	completed := []CompletedActivity{
		{ExternalID: "a1", Date: day(0), DurationSeconds: 3600},
		{ExternalID: "a2", Date: day(2), DurationSeconds: 3600},
		{ExternalID: "a3", Date: day(5), DurationSeconds: 1800},
		{ExternalID: "a4", Date: day(2), DurationSeconds: 1200},
		{ExternalID: "a5", Date: day(20), DurationSeconds: 3600},
	}
	zoneMinutes := map[Zone]float64{Z1: 140, Z2: 30, Z3: 30}
	classifications := map[string]string{"a4": "AD_HOC", "a1": "planned"}

	got := SummarizeCompliance(planned, completed, zoneMinutes, classifications, day(0), day(6))

	if got.CompletionPercent != 100 {
		t.Errorf("CompletionPercent = %v, want capped 100", got.CompletionPercent)
	}
	if got.KeySessionCompletionPercent != 50 {
		t.Errorf("KeySessionCompletionPercent = %v, want 50", got.KeySessionCompletionPercent)
	}
	// planned split 70/13.33/16.67 against actual 70/15/15
	if math.Abs(got.ZoneAdherencePercent-(100-10.0/3)) > 1e-9 {
		t.Errorf("ZoneAdherencePercent = %v, want %v", got.ZoneAdherencePercent, 100-10.0/3)
	}
	// a3 on an unplanned day plus a4 tagged ad_hoc
	if math.Abs(got.UnplannedLoadMinutes-50) > 1e-9 {
		t.Errorf("UnplannedLoadMinutes = %v, want 50", got.UnplannedLoadMinutes)
	}
	wantFlags := []string{FlagMissedKeySession, FlagUnplannedLoad}
	if !reflect.DeepEqual(got.Flags, wantFlags) {
		t.Errorf("Flags = %v, want %v", got.Flags, wantFlags)
	}
}

func TestSummarizeCompliance_NothingPlanned(t *testing.T) {
	completed := []CompletedActivity{{ExternalID: "a1", Date: day(1), DurationSeconds: 2700}}
	got := SummarizeCompliance(nil, completed, map[Zone]float64{Z1: 45}, nil, day(0), day(6))

	if got.CompletionPercent != 100.0 {
		t.Errorf("CompletionPercent = %v, want exactly 100", got.CompletionPercent)
	}
	if got.KeySessionCompletionPercent != 100.0 {
		t.Errorf("KeySessionCompletionPercent = %v, want 100", got.KeySessionCompletionPercent)
	}
	if got.ZoneAdherencePercent != 100.0 {
		t.Errorf("ZoneAdherencePercent = %v, want 100", got.ZoneAdherencePercent)
	}
	if got.UnplannedLoadMinutes != 45 {
		t.Errorf("UnplannedLoadMinutes = %v, want 45", got.UnplannedLoadMinutes)
	}
}

func TestSummarizeCompliance_Partial(t *testing.T) {
	planned := []PlannedWorkout{
		mustPlan(t, "p1", 1, WorkoutRecovery, 30, Distribution{Z1: 100}),
		mustPlan(t, "p2", 3, WorkoutEndurance, 90, Distribution{Z1: 100}),
	}
	completed := []CompletedActivity{{ExternalID: "a1", Date: day(1), DurationSeconds: 1800}}

	got := SummarizeCompliance(planned, completed, map[Zone]float64{Z3: 30}, nil, day(0), day(6))

	if got.CompletionPercent != 50 {
		t.Errorf("CompletionPercent = %v, want 50", got.CompletionPercent)
	}
	// all planned Z1 but all actual Z3: deviation 200 floors at 0
	if got.ZoneAdherencePercent != 0 {
		t.Errorf("ZoneAdherencePercent = %v, want 0", got.ZoneAdherencePercent)
	}
	if got.KeySessionCompletionPercent != 100 {
		t.Errorf("KeySessionCompletionPercent = %v, want 100 with no key sessions", got.KeySessionCompletionPercent)
	}
	if len(got.Flags) != 0 {
		t.Errorf("Flags = %v, want none", got.Flags)
	}
}

func TestSummarizeCompliance_Z2CreepFlag(t *testing.T) {
	got := SummarizeCompliance(nil, nil, map[Zone]float64{Z1: 50, Z2: 50}, nil, day(0), day(6))
	if !got.HasFlag(FlagZ2Creep) {
		t.Errorf("Flags = %v, want %s", got.Flags, FlagZ2Creep)
	}

	got = SummarizeCompliance(nil, nil, nil, nil, day(0), day(6))
	if got.ZoneAdherencePercent != 100 || len(got.Flags) != 0 {
		t.Errorf("empty range summary = %+v", got)
	}
}

func TestSummarizeCompliance_Z2CreepBoundary(t *testing.T) {
	tests := []struct {
		name  string
		z1    float64
		z2    float64
		creep bool
	}{
		{"exactly 20 percent", 80, 20, false},
		{"quarter of the week", 75, 25, true},
		{"just over", 79, 21, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeCompliance(nil, nil, map[Zone]float64{Z1: tt.z1, Z2: tt.z2}, nil, day(0), day(6))
			if got.HasFlag(FlagZ2Creep) != tt.creep {
				t.Errorf("Z2 %v%%: flags = %v, want creep=%v", tt.z2, got.Flags, tt.creep)
			}
		})
	}
}

func TestNewPlannedWorkout_Invalid(t *testing.T) {
	if _, err := NewPlannedWorkout("p", day(0), WorkoutEndurance, 0, Distribution{Z1: 100}); !errors.Is(err, ErrNegativeValue) {
		t.Errorf("zero duration error = %v, want ErrNegativeValue", err)
	}
	if _, err := NewPlannedWorkout("p", day(0), WorkoutEndurance, 60, Distribution{Z1: 90, Z2: 20}); err == nil {
		t.Error("zone split over 100% should fail")
	}
}

func TestWorkoutType_IsKeySession(t *testing.T) {
	for _, w := range []WorkoutType{WorkoutThreshold, WorkoutIntervals, "threshold"} {
		if !w.IsKeySession() {
			t.Errorf("%s should be a key session", w)
		}
	}
	for _, w := range []WorkoutType{WorkoutEndurance, WorkoutRecovery, WorkoutVO2Max} {
		if w.IsKeySession() {
			t.Errorf("%s should not be a key session", w)
		}
	}
}

func TestSummarizeProgress(t *testing.T) {
	tests := []struct {
		name    string
		volumes []float64
		streak  int
	}{
		{"empty", nil, 0},
		{"all positive", []float64{5, 6, 7}, 3},
		{"broken streak", []float64{5, 0, 6, 7}, 2},
		{"last week zero", []float64{5, 6, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeProgress(tt.volumes, []float64{300, 320})
			if got.CompletionStreak != tt.streak {
				t.Errorf("CompletionStreak = %d, want %d", got.CompletionStreak, tt.streak)
			}
			if len(got.WeeklyVolumes) != len(tt.volumes) || len(got.TrainingLoads) != 2 {
				t.Errorf("summary lists = %v / %v", got.WeeklyVolumes, got.TrainingLoads)
			}
		})
	}
}

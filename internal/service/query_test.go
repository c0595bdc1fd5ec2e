package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training-coach/internal/analysis"
	"training-coach/internal/store"
)

func efPtr(v float64) *float64 { return &v }

func TestGetMonday(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{monday, monday},
		{dayOffset(3), monday},
		{dayOffset(6), monday},
		{dayOffset(7), dayOffset(7)},
		{dayOffset(-1), dayOffset(-7)},
	}
	for _, tt := range tests {
		assert.True(t, getMonday(tt.in).Equal(tt.want), "getMonday(%s)", tt.in.Format("2006-01-02"))
	}
}

func TestGetDashboardData(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	q := NewQueryService(s.store, s.load)

	for d := 0; d < 3; d++ {
		_, err := s.wellness.Submit(ctx, signal("a1", d, 3))
		require.NoError(t, err)
	}
	require.NoError(t, s.load.RecordDailyStress(ctx, "a1", dayOffset(1), 80, 90))

	activities := []store.Activity{
		{AthleteID: "a1", ExternalID: "old", Date: dayOffset(-10).Format("2006-01-02"), Type: "ENDURANCE",
			DurationSeconds: 3600, TSS: 50, Z1Minutes: 60, EfficiencyFactor: efPtr(1.40)},
		{AthleteID: "a1", ExternalID: "mon", Date: dayOffset(0).Format("2006-01-02"), Type: "ENDURANCE",
			DurationSeconds: 3600, TSS: 50, Z1Minutes: 50, Z2Minutes: 10, EfficiencyFactor: efPtr(1.60)},
		{AthleteID: "a1", ExternalID: "tue", Date: dayOffset(1).Format("2006-01-02"), Type: "INTERVALS",
			DurationSeconds: 5400, TSS: 80, Z1Minutes: 60, Z2Minutes: 10, Z3Minutes: 20, EfficiencyFactor: efPtr(1.50)},
	}
	for _, a := range activities {
		require.NoError(t, s.store.UpsertActivity(ctx, a))
	}

	data, err := q.GetDashboardData(ctx, "a1", dayOffset(2).Add(15*time.Hour))
	require.NoError(t, err)

	assert.True(t, data.Date.Equal(dayOffset(2)))
	assert.True(t, data.HasCheckIn)
	assert.Greater(t, data.Readiness.Score, 0.0)
	assert.Len(t, data.ReadinessHistory, 3)
	assert.NotEmpty(t, data.FitnessHistory)
	assert.Greater(t, data.Fitness, 0.0)
	assert.Equal(t, analysis.FormDescription(data.Form), data.FormDescription)

	assert.Equal(t, 2, data.WeekSessions)
	assert.InDelta(t, 9000, data.WeekSeconds, 1e-9)
	assert.InDelta(t, 130, data.WeekTSS, 1e-9)
	assert.InDelta(t, 110.0/150*100, data.WeekDistribution.Distribution.Z1, 1e-9)

	require.Len(t, data.RecentActivities, 3)
	assert.Equal(t, "tue", data.RecentActivities[0].ExternalID)
	assert.Equal(t, "old", data.RecentActivities[2].ExternalID)

	// 7-day EF 1.55 against a 28-day average of 1.5
	assert.InDelta(t, 1.55, data.CurrentEF, 1e-9)
	assert.Equal(t, "↑", data.EFTrend)
}

func TestGetDashboardDataWithoutCheckIn(t *testing.T) {
	s := newServices(t, nil)
	q := NewQueryService(s.store, s.load)

	data, err := q.GetDashboardData(context.Background(), "a1", dayOffset(0))
	require.NoError(t, err)
	assert.False(t, data.HasCheckIn)
	assert.Zero(t, data.WeekSessions)
	assert.Empty(t, data.RecentActivities)
	assert.Empty(t, data.EFTrend)
}

func TestGetProgress(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	q := NewQueryService(s.store, s.load)

	for i, a := range []store.Activity{
		{ExternalID: "w-2", Date: dayOffset(-14).Format("2006-01-02"), DurationSeconds: 7200, TSS: 100, Z1Minutes: 120},
		{ExternalID: "w-1", Date: dayOffset(-5).Format("2006-01-02"), DurationSeconds: 3600, TSS: 60, Z1Minutes: 30, Z2Minutes: 30},
		{ExternalID: "w0", Date: dayOffset(2).Format("2006-01-02"), DurationSeconds: 3600, TSS: 70, Z1Minutes: 60},
	} {
		a.AthleteID = "a1"
		a.Type = "ENDURANCE"
		require.NoError(t, s.store.UpsertActivity(ctx, a), "activity %d", i)
	}

	p, err := q.GetProgress(ctx, "a1", dayOffset(3), 4)
	require.NoError(t, err)
	require.Len(t, p.Weeks, 4)

	assert.True(t, p.Weeks[0].Start.Equal(dayOffset(-21)))
	assert.Equal(t, 0, p.Weeks[0].Sessions)
	assert.InDelta(t, 2, p.Weeks[1].Hours, 1e-9)
	assert.InDelta(t, 60, p.Weeks[2].TSS, 1e-9)
	assert.Equal(t, 1, p.Weeks[3].Sessions)

	assert.Equal(t, 3, p.Summary.CompletionStreak)
	assert.Equal(t, []float64{0, 2, 1, 1}, p.Summary.WeeklyVolumes)
	assert.True(t, p.Z2Creep)
}

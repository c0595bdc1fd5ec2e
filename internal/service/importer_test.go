package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"

	"training-coach/internal/analysis"
	"training-coach/internal/config"
)

// steadyRide encodes a FIT activity with one record per second at constant power and heart rate
func steadyRide(t *testing.T, start time.Time, seconds int, power uint16, hr uint8) []byte {
	t.Helper()

	file, err := fit.NewFile(fit.FileTypeActivity, fit.NewHeader(fit.V20, true))
	require.NoError(t, err)
	activity, err := file.Activity()
	require.NoError(t, err)

	for i := 0; i < seconds; i++ {
		record := fit.NewRecordMsg()
		record.Timestamp = start.Add(time.Duration(i) * time.Second)
		record.Power = power
		record.HeartRate = hr
		activity.Records = append(activity.Records, record)
	}

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}

func newImporter(t *testing.T, athlete config.AthleteConfig) (*services, *ImportService) {
	t.Helper()
	s := newServices(t, nil)
	return s, NewImportService(s.store, s.load, athlete, zerolog.Nop(), s.metrics)
}

func TestImportFIT(t *testing.T) {
	ctx := context.Background()
	s, imp := newImporter(t, config.AthleteConfig{FTPWatts: 250, LT1Watts: 180, LT2Watts: 240})
	start := dayOffset(2).Add(7 * time.Hour)
	data := steadyRide(t, start, 1200, 200, 140)

	act, err := imp.ImportFIT(ctx, "a1", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "2026-03-04", act.Date)
	assert.Equal(t, string(analysis.WorkoutEndurance), act.Type)
	assert.InDelta(t, 1200, act.DurationSeconds, 1e-9)
	assert.InDelta(t, 21.333, act.TSS, 0.01)
	assert.InDelta(t, 20, act.Z2Minutes, 1e-9)
	assert.Zero(t, act.Z1Minutes)
	require.NotNil(t, act.NormalizedPower)
	assert.InDelta(t, 200, *act.NormalizedPower, 1e-9)

	stored, err := s.store.GetActivity(ctx, "a1", act.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, act.TSS, stored.TSS)

	stress, err := s.store.ListDailyStress(ctx, "a1", dayOffset(2), dayOffset(2))
	require.NoError(t, err)
	require.Len(t, stress, 1)
	assert.InDelta(t, act.TSS, stress[0].TSS, 1e-9)
	assert.Equal(t, 20, stress[0].TrainingMinutes)

	load, err := s.store.GetTrainingLoad(ctx, "a1", dayOffset(2))
	require.NoError(t, err)
	assert.InDelta(t, act.TSS/42, load.CTL, 1e-9)

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.CounterActivitiesImported))
}

func TestImportFITIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, imp := newImporter(t, config.AthleteConfig{FTPWatts: 250})
	data := steadyRide(t, dayOffset(0).Add(6*time.Hour), 600, 230, 150)

	first, err := imp.ImportFIT(ctx, "a1", bytes.NewReader(data))
	require.NoError(t, err)
	_, err = imp.ImportFIT(ctx, "a1", bytes.NewReader(data))
	require.NoError(t, err)

	activities, err := s.store.ListActivities(ctx, "a1", dayOffset(0), dayOffset(0))
	require.NoError(t, err)
	assert.Len(t, activities, 1)

	stress, err := s.store.ListDailyStress(ctx, "a1", dayOffset(0), dayOffset(0))
	require.NoError(t, err)
	require.Len(t, stress, 1)
	assert.InDelta(t, first.TSS, stress[0].TSS, 1e-9)
}

func TestImportFITSumsDay(t *testing.T) {
	ctx := context.Background()
	s, imp := newImporter(t, config.AthleteConfig{FTPWatts: 250})

	morning, err := imp.ImportFIT(ctx, "a1", bytes.NewReader(steadyRide(t, dayOffset(1).Add(6*time.Hour), 600, 200, 140)))
	require.NoError(t, err)
	evening, err := imp.ImportFIT(ctx, "a1", bytes.NewReader(steadyRide(t, dayOffset(1).Add(18*time.Hour), 900, 180, 135)))
	require.NoError(t, err)
	require.NotEqual(t, morning.ExternalID, evening.ExternalID)

	stress, err := s.store.ListDailyStress(ctx, "a1", dayOffset(1), dayOffset(1))
	require.NoError(t, err)
	require.Len(t, stress, 1)
	assert.InDelta(t, morning.TSS+evening.TSS, stress[0].TSS, 1e-9)
	assert.Equal(t, 25, stress[0].TrainingMinutes)
}

func TestImportFITThresholdResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("stored estimate wins", func(t *testing.T) {
		s, imp := newImporter(t, config.AthleteConfig{LT1Watts: 150, LT2Watts: 190})
		th, err := analysis.NewThresholds(220, 260)
		require.NoError(t, err)
		require.NoError(t, s.store.SaveThresholds(ctx, "a1", analysis.Estimate{
			Thresholds: th, Method: analysis.MethodLabLactate, Confidence: 0.95, Date: dayOffset(-10),
		}))

		act, err := imp.ImportFIT(ctx, "a1", bytes.NewReader(steadyRide(t, dayOffset(0).Add(8*time.Hour), 600, 200, 140)))
		require.NoError(t, err)
		assert.InDelta(t, 10, act.Z1Minutes, 1e-9)
		assert.Greater(t, act.TSS, 0.0)
	})

	t.Run("configured thresholds", func(t *testing.T) {
		_, imp := newImporter(t, config.AthleteConfig{LT1Watts: 150, LT2Watts: 190})
		act, err := imp.ImportFIT(ctx, "a1", bytes.NewReader(steadyRide(t, dayOffset(0).Add(8*time.Hour), 600, 200, 140)))
		require.NoError(t, err)
		assert.InDelta(t, 10, act.Z3Minutes, 1e-9)
	})

	t.Run("nothing configured", func(t *testing.T) {
		s, imp := newImporter(t, config.AthleteConfig{})
		act, err := imp.ImportFIT(ctx, "a1", bytes.NewReader(steadyRide(t, dayOffset(0).Add(8*time.Hour), 600, 200, 140)))
		require.NoError(t, err)
		assert.Zero(t, act.TSS)
		assert.Zero(t, act.Z1Minutes+act.Z2Minutes+act.Z3Minutes)
		assert.Equal(t, string(analysis.WorkoutEndurance), act.Type)

		// Power and heart rate are still kept
		require.NotNil(t, act.AveragePower)
		assert.InDelta(t, 200, *act.AveragePower, 1e-9)

		stress, err := s.store.ListDailyStress(ctx, "a1", dayOffset(0), dayOffset(0))
		require.NoError(t, err)
		require.Len(t, stress, 1)
		assert.Zero(t, stress[0].TSS)
	})
}

func TestImportFITRejectsGarbage(t *testing.T) {
	_, imp := newImporter(t, config.AthleteConfig{FTPWatts: 250})
	_, err := imp.ImportFIT(context.Background(), "a1", bytes.NewReader([]byte("not a fit file")))
	assert.Error(t, err)
}

package store

import (
	"context"
	"fmt"
	"time"

	"training-coach/internal/analysis"
)

// UpsertPlannedWorkout saves a planned session, replacing one with the same ID
func (s *Store) UpsertPlannedWorkout(ctx context.Context, athleteID string, w analysis.PlannedWorkout) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO planned_workouts (id, athlete_id, date, type, duration_minutes, z1_pct, z2_pct, z3_pct)
		VALUES (:id, :athlete_id, :date, :type, :duration_minutes, :z1_pct, :z2_pct, :z3_pct)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			date = excluded.date,
			type = excluded.type,
			duration_minutes = excluded.duration_minutes,
			z1_pct = excluded.z1_pct,
			z2_pct = excluded.z2_pct,
			z3_pct = excluded.z3_pct
	`, plannedRow{
		ID:              w.ID,
		AthleteID:       athleteID,
		Date:            formatDate(w.Date),
		Type:            string(w.Type),
		DurationMinutes: w.DurationMinutes,
		Z1Pct:           w.Intensity.Z1,
		Z2Pct:           w.Intensity.Z2,
		Z3Pct:           w.Intensity.Z3,
	})
	if err != nil {
		return fmt.Errorf("upserting planned workout: %w", err)
	}
	return nil
}

// ListPlannedWorkouts returns planned sessions in [start, end], oldest first
func (s *Store) ListPlannedWorkouts(ctx context.Context, athleteID string, start, end time.Time) ([]analysis.PlannedWorkout, error) {
	var rows []plannedRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, athlete_id, date, type, duration_minutes, z1_pct, z2_pct, z3_pct
		FROM planned_workouts
		WHERE athlete_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, id ASC
	`, athleteID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, fmt.Errorf("listing planned workouts: %w", err)
	}

	workouts := make([]analysis.PlannedWorkout, 0, len(rows))
	for _, r := range rows {
		date, err := parseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing planned date %q: %w", r.Date, err)
		}
		workouts = append(workouts, analysis.PlannedWorkout{
			ID:              r.ID,
			Date:            date,
			Type:            analysis.WorkoutType(r.Type),
			DurationMinutes: r.DurationMinutes,
			Intensity:       analysis.Distribution{Z1: r.Z1Pct, Z2: r.Z2Pct, Z3: r.Z3Pct},
		})
	}
	return workouts, nil
}

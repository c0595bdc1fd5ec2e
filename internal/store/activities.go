package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"training-coach/internal/analysis"
)

const activityColumns = `athlete_id, external_id, date, name, type, duration_seconds, tss,
	z1_minutes, z2_minutes, z3_minutes, classification,
	average_power, normalized_power, average_heartrate, efficiency_factor, decoupling`

// UpsertActivity inserts or updates a completed activity
func (s *Store) UpsertActivity(ctx context.Context, a Activity) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO activities (`+activityColumns+`)
		VALUES (
			:athlete_id, :external_id, :date, :name, :type, :duration_seconds, :tss,
			:z1_minutes, :z2_minutes, :z3_minutes, :classification,
			:average_power, :normalized_power, :average_heartrate, :efficiency_factor, :decoupling
		)
		ON CONFLICT(athlete_id, external_id) DO UPDATE SET
			date = excluded.date,
			name = excluded.name,
			type = excluded.type,
			duration_seconds = excluded.duration_seconds,
			tss = excluded.tss,
			z1_minutes = excluded.z1_minutes,
			z2_minutes = excluded.z2_minutes,
			z3_minutes = excluded.z3_minutes,
			classification = excluded.classification,
			average_power = excluded.average_power,
			normalized_power = excluded.normalized_power,
			average_heartrate = excluded.average_heartrate,
			efficiency_factor = excluded.efficiency_factor,
			decoupling = excluded.decoupling,
			updated_at = CURRENT_TIMESTAMP
	`, a)
	if err != nil {
		return fmt.Errorf("upserting activity: %w", err)
	}
	return nil
}

// GetActivity returns a single activity by its external ID
func (s *Store) GetActivity(ctx context.Context, athleteID, externalID string) (*Activity, error) {
	var a Activity
	err := s.db.GetContext(ctx, &a, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE athlete_id = ? AND external_id = ?
	`, athleteID, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting activity: %w", err)
	}
	return &a, nil
}

// ListActivities returns activities dated in [start, end], oldest first
func (s *Store) ListActivities(ctx context.Context, athleteID string, start, end time.Time) ([]Activity, error) {
	var activities []Activity
	err := s.db.SelectContext(ctx, &activities, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE athlete_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, external_id ASC
	`, athleteID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return activities, nil
}

// SetClassification tags an activity, e.g. as ad hoc
func (s *Store) SetClassification(ctx context.Context, athleteID, externalID, classification string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE activities SET classification = ?, updated_at = CURRENT_TIMESTAMP
		WHERE athlete_id = ? AND external_id = ?
	`, classification, athleteID, externalID)
	if err != nil {
		return fmt.Errorf("updating classification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking classification update: %w", err)
	}
	if n == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// LastHighIntensityDate returns the most recent day on or before the given date
// with a high-intensity activity, or nil if there is none
func (s *Store) LastHighIntensityDate(ctx context.Context, athleteID string, onOrBefore time.Time) (*time.Time, error) {
	var date sql.NullString
	err := s.db.GetContext(ctx, &date, `
		SELECT MAX(date) FROM activities
		WHERE athlete_id = ? AND date <= ? AND UPPER(type) IN (?, ?, ?, ?)
	`, athleteID, formatDate(onOrBefore),
		string(analysis.WorkoutThreshold), string(analysis.WorkoutIntervals),
		string(analysis.WorkoutVO2Max), string(analysis.WorkoutSprint))
	if err != nil {
		return nil, fmt.Errorf("finding last high intensity day: %w", err)
	}
	if !date.Valid {
		return nil, nil
	}
	t, err := parseDate(date.String)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date.String, err)
	}
	return &t, nil
}

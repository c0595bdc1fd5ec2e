package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"training-coach/internal/analysis"
)

const snapshotColumns = `
	w.athlete_id, w.date, w.resting_hr, w.hrv, w.body_weight_kg, w.sleep_hours, w.sleep_quality,
	w.fatigue, w.stress, w.subjective_sleep, w.motivation, w.soreness, w.notes,
	l.tss AS load_tss, l.ctl AS load_ctl, l.atl AS load_atl, l.tsb AS load_tsb,
	l.training_minutes AS load_minutes`

// UpsertSnapshot inserts or replaces the athlete's snapshot for its date.
// Only the check-in signals are stored. Load is joined from training_loads on read
// and readiness is scored from both, so it always reflects the current load.
func (s *Store) UpsertSnapshot(ctx context.Context, snap analysis.WellnessSnapshot) error {
	row := newSnapshotRow(snap)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO wellness_snapshots (
			athlete_id, date, resting_hr, hrv, body_weight_kg, sleep_hours, sleep_quality,
			fatigue, stress, subjective_sleep, motivation, soreness, notes
		) VALUES (
			:athlete_id, :date, :resting_hr, :hrv, :body_weight_kg, :sleep_hours, :sleep_quality,
			:fatigue, :stress, :subjective_sleep, :motivation, :soreness, :notes
		)
		ON CONFLICT(athlete_id, date) DO UPDATE SET
			resting_hr = excluded.resting_hr,
			hrv = excluded.hrv,
			body_weight_kg = excluded.body_weight_kg,
			sleep_hours = excluded.sleep_hours,
			sleep_quality = excluded.sleep_quality,
			fatigue = excluded.fatigue,
			stress = excluded.stress,
			subjective_sleep = excluded.subjective_sleep,
			motivation = excluded.motivation,
			soreness = excluded.soreness,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP
	`, row)
	if err != nil {
		return fmt.Errorf("upserting wellness snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the athlete's snapshot for a day
func (s *Store) GetSnapshot(ctx context.Context, athleteID string, date time.Time) (*analysis.WellnessSnapshot, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+snapshotColumns+`
		FROM wellness_snapshots w
		LEFT JOIN training_loads l ON l.athlete_id = w.athlete_id AND l.date = w.date
		WHERE w.athlete_id = ? AND w.date = ?
	`, athleteID, formatDate(date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting wellness snapshot: %w", err)
	}

	snap, err := row.toSnapshot()
	if err != nil {
		return nil, fmt.Errorf("decoding wellness snapshot: %w", err)
	}
	return &snap, nil
}

// ListSnapshots returns the athlete's snapshots in [start, end], oldest first
func (s *Store) ListSnapshots(ctx context.Context, athleteID string, start, end time.Time) ([]analysis.WellnessSnapshot, error) {
	var rows []snapshotRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+snapshotColumns+`
		FROM wellness_snapshots w
		LEFT JOIN training_loads l ON l.athlete_id = w.athlete_id AND l.date = w.date
		WHERE w.athlete_id = ? AND w.date >= ? AND w.date <= ?
		ORDER BY w.date ASC
	`, athleteID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, fmt.Errorf("listing wellness snapshots: %w", err)
	}

	snaps := make([]analysis.WellnessSnapshot, 0, len(rows))
	for _, r := range rows {
		snap, err := r.toSnapshot()
		if err != nil {
			return nil, fmt.Errorf("decoding wellness snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

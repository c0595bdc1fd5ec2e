package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"training-coach/internal/analysis"
)

// UpsertDailyStress records the raw stress for one day, replacing any earlier value
func (s *Store) UpsertDailyStress(ctx context.Context, athleteID string, d analysis.DailyStress) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO daily_stress (athlete_id, date, tss, training_minutes)
		VALUES (:athlete_id, :date, :tss, :training_minutes)
		ON CONFLICT(athlete_id, date) DO UPDATE SET
			tss = excluded.tss,
			training_minutes = excluded.training_minutes,
			updated_at = CURRENT_TIMESTAMP
	`, stressRow{
		AthleteID:       athleteID,
		Date:            formatDate(d.Date),
		TSS:             d.TSS,
		TrainingMinutes: d.TrainingMinutes,
	})
	if err != nil {
		return fmt.Errorf("upserting daily stress: %w", err)
	}
	return nil
}

// ListDailyStress returns raw stress records in [start, end], oldest first
func (s *Store) ListDailyStress(ctx context.Context, athleteID string, start, end time.Time) ([]analysis.DailyStress, error) {
	var rows []stressRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT athlete_id, date, tss, training_minutes
		FROM daily_stress
		WHERE athlete_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, athleteID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, fmt.Errorf("listing daily stress: %w", err)
	}

	history := make([]analysis.DailyStress, 0, len(rows))
	for _, r := range rows {
		date, err := parseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing stress date %q: %w", r.Date, err)
		}
		history = append(history, analysis.DailyStress{Date: date, TSS: r.TSS, TrainingMinutes: r.TrainingMinutes})
	}
	return history, nil
}

// UpsertTrainingLoads writes a batch of load summaries in a single transaction
func (s *Store) UpsertTrainingLoads(ctx context.Context, loads []analysis.TrainingLoadSummary) error {
	if len(loads) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO training_loads (athlete_id, date, tss, ctl, atl, tsb, training_minutes)
		VALUES (:athlete_id, :date, :tss, :ctl, :atl, :tsb, :training_minutes)
		ON CONFLICT(athlete_id, date) DO UPDATE SET
			tss = excluded.tss,
			ctl = excluded.ctl,
			atl = excluded.atl,
			tsb = excluded.tsb,
			training_minutes = excluded.training_minutes,
			computed_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing load upsert: %w", err)
	}
	defer stmt.Close()

	for _, l := range loads {
		if _, err := stmt.ExecContext(ctx, newLoadRow(l)); err != nil {
			return fmt.Errorf("upserting load for %s: %w", formatDate(l.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing loads: %w", err)
	}
	return nil
}

// GetTrainingLoad returns the computed load for a day
func (s *Store) GetTrainingLoad(ctx context.Context, athleteID string, date time.Time) (*analysis.TrainingLoadSummary, error) {
	var row loadRow
	err := s.db.GetContext(ctx, &row, `
		SELECT athlete_id, date, tss, ctl, atl, tsb, training_minutes
		FROM training_loads
		WHERE athlete_id = ? AND date = ?
	`, athleteID, formatDate(date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLoadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting training load: %w", err)
	}

	summary, err := row.toSummary()
	if err != nil {
		return nil, fmt.Errorf("decoding training load: %w", err)
	}
	return &summary, nil
}

// ListTrainingLoads returns computed loads in [start, end], oldest first
func (s *Store) ListTrainingLoads(ctx context.Context, athleteID string, start, end time.Time) ([]analysis.TrainingLoadSummary, error) {
	var rows []loadRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT athlete_id, date, tss, ctl, atl, tsb, training_minutes
		FROM training_loads
		WHERE athlete_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, athleteID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, fmt.Errorf("listing training loads: %w", err)
	}

	loads := make([]analysis.TrainingLoadSummary, 0, len(rows))
	for _, r := range rows {
		summary, err := r.toSummary()
		if err != nil {
			return nil, fmt.Errorf("decoding training load: %w", err)
		}
		loads = append(loads, summary)
	}
	return loads, nil
}

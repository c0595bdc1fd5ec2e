package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"training-coach/internal/analysis"
)

// SaveThresholds stores a threshold estimate dated on e.Date (today if zero)
func (s *Store) SaveThresholds(ctx context.Context, athleteID string, e analysis.Estimate) error {
	date := e.Date
	if date.IsZero() {
		date = time.Now()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO thresholds (athlete_id, date, lt1, lt2, method, confidence)
		VALUES (:athlete_id, :date, :lt1, :lt2, :method, :confidence)
		ON CONFLICT(athlete_id, date) DO UPDATE SET
			lt1 = excluded.lt1,
			lt2 = excluded.lt2,
			method = excluded.method,
			confidence = excluded.confidence
	`, thresholdRow{
		AthleteID:  athleteID,
		Date:       formatDate(date),
		LT1:        e.LT1,
		LT2:        e.LT2,
		Method:     string(e.Method),
		Confidence: e.Confidence,
	})
	if err != nil {
		return fmt.Errorf("saving thresholds: %w", err)
	}
	return nil
}

// LatestThresholds returns the athlete's most recent estimate
func (s *Store) LatestThresholds(ctx context.Context, athleteID string) (*analysis.Estimate, error) {
	var row thresholdRow
	err := s.db.GetContext(ctx, &row, `
		SELECT athlete_id, date, lt1, lt2, method, confidence
		FROM thresholds
		WHERE athlete_id = ?
		ORDER BY date DESC
		LIMIT 1
	`, athleteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrThresholdsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting thresholds: %w", err)
	}

	date, err := parseDate(row.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing threshold date %q: %w", row.Date, err)
	}
	return &analysis.Estimate{
		Thresholds: analysis.Thresholds{LT1: row.LT1, LT2: row.LT2},
		Method:     analysis.ThresholdMethod(row.Method),
		Confidence: row.Confidence,
		Date:       date,
	}, nil
}

package store

import (
	"context"
	"fmt"
	"time"
)

// InsertAudit appends a guardrail audit entry. A zero CreatedAt is stamped with now.
func (s *Store) InsertAudit(ctx context.Context, e AuditEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guardrail_audit (id, athlete_id, rule_id, decision, reason, performed_by, justification, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.AthleteID, e.RuleID, e.Decision, e.Reason, e.PerformedBy, e.Justification,
		e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the athlete's audit trail, oldest first
func (s *Store) ListAudit(ctx context.Context, athleteID string) ([]AuditEntry, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, athlete_id, rule_id, decision, reason, performed_by, justification, created_at
		FROM guardrail_audit
		WHERE athlete_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.AthleteID, &e.RuleID, &e.Decision, &e.Reason,
			&e.PerformedBy, &e.Justification, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing audit time %q: %w", createdAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}
	return entries, nil
}

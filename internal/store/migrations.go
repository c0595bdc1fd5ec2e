package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migrate runs all database migrations
func migrate(db *sqlx.DB) error {
	migrations := []string{
		// Daily wellness check-ins, one per athlete per day
		`CREATE TABLE IF NOT EXISTS wellness_snapshots (
			athlete_id TEXT NOT NULL,
			date TEXT NOT NULL,
			resting_hr REAL,
			hrv REAL,
			body_weight_kg REAL,
			sleep_hours REAL,
			sleep_quality INTEGER,
			fatigue INTEGER,
			stress INTEGER,
			subjective_sleep INTEGER,
			motivation INTEGER,
			soreness INTEGER,
			notes TEXT,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, date)
		)`,

		// Raw daily training stress (input to CTL/ATL)
		`CREATE TABLE IF NOT EXISTS daily_stress (
			athlete_id TEXT NOT NULL,
			date TEXT NOT NULL,
			tss REAL NOT NULL,
			training_minutes INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, date)
		)`,

		// Computed daily load summaries
		`CREATE TABLE IF NOT EXISTS training_loads (
			athlete_id TEXT NOT NULL,
			date TEXT NOT NULL,
			tss REAL NOT NULL,
			ctl REAL NOT NULL,
			atl REAL NOT NULL,
			tsb REAL NOT NULL,
			training_minutes INTEGER NOT NULL DEFAULT 0,
			computed_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS planned_workouts (
			id TEXT PRIMARY KEY,
			athlete_id TEXT NOT NULL,
			date TEXT NOT NULL,
			type TEXT NOT NULL,
			duration_minutes REAL NOT NULL,
			z1_pct REAL NOT NULL DEFAULT 0,
			z2_pct REAL NOT NULL DEFAULT 0,
			z3_pct REAL NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_planned_athlete_date ON planned_workouts(athlete_id, date)`,

		// Completed activities with time-in-zone
		`CREATE TABLE IF NOT EXISTS activities (
			athlete_id TEXT NOT NULL,
			external_id TEXT NOT NULL,
			date TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			duration_seconds REAL NOT NULL,
			tss REAL NOT NULL DEFAULT 0,
			z1_minutes REAL NOT NULL DEFAULT 0,
			z2_minutes REAL NOT NULL DEFAULT 0,
			z3_minutes REAL NOT NULL DEFAULT 0,
			classification TEXT NOT NULL DEFAULT '',
			average_power REAL,
			normalized_power REAL,
			average_heartrate REAL,
			efficiency_factor REAL,
			decoupling REAL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, external_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_athlete_date ON activities(athlete_id, date)`,

		// Threshold estimates, newest wins
		`CREATE TABLE IF NOT EXISTS thresholds (
			athlete_id TEXT NOT NULL,
			date TEXT NOT NULL,
			lt1 REAL NOT NULL,
			lt2 REAL NOT NULL,
			method TEXT NOT NULL,
			confidence REAL NOT NULL,
			PRIMARY KEY (athlete_id, date)
		)`,

		// Guardrail decisions and overrides
		`CREATE TABLE IF NOT EXISTS guardrail_audit (
			id TEXT PRIMARY KEY,
			athlete_id TEXT NOT NULL,
			rule_id TEXT NOT NULL,
			decision TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			performed_by TEXT NOT NULL,
			justification TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_audit_athlete ON guardrail_audit(athlete_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	// Readiness is scored on read; older databases stored it as NOT NULL
	return dropColumnIfExists(db, "wellness_snapshots", "readiness")
}

func dropColumnIfExists(db *sqlx.DB, table, column string) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column); err != nil {
		return fmt.Errorf("inspecting %s: %w", table, err)
	}
	if n == 0 {
		return nil
	}
	if _, err := db.Exec(fmt.Sprintf(`ALTER TABLE %s DROP COLUMN %s`, table, column)); err != nil {
		return fmt.Errorf("dropping %s.%s: %w", table, column, err)
	}
	return nil
}

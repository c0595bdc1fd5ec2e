package store

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Store provides access to the training database
type Store struct {
	db *sqlx.DB
}

func newStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

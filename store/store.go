// Package store persists forms and responses. Form and response rows
// are related only by form_id; cascades run in application-level
// transactions, not storage constraints.
package store

import (
	"database/sql"

	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an update loses the optimistic
	// version check against a concurrent edit.
	ErrConflict       = errors.New("conflicting update")
	ErrDuplicateField = errors.New("duplicate field id")
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

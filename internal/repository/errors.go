package repository

import (
	"errors"
	"fmt"

	"financeflow/internal/schema"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrValidation        = errors.New("document failed validation")
	ErrNotFound          = errors.New("document not found")
	ErrConflict          = errors.New("document already exists")
	ErrForbidden         = errors.New("document belongs to another user")
	ErrStorage           = errors.New("storage fault")
	ErrClosed            = errors.New("store is closed")
	ErrMigrationRequired = schema.ErrMigrationRequired
)

// classify maps a driver error onto the store's taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

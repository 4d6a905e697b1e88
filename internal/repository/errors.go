// Package repository holds the data-access objects for users and articles.
package repository

import (
	"errors"  // Error values and inspection
	"fmt"     // Error formatting
	"strings" // Driver message matching

	"gorm.io/gorm" // GORM error values
)

var (
	// ErrNotFound is returned when no row matches the lookup
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when an insert violates a uniqueness constraint
	ErrDuplicateKey = errors.New("duplicate key")
)

// PersistenceError wraps any other storage failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// classify maps a gorm/driver error onto the repository taxonomy
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isDuplicate(err):
		return ErrDuplicateKey
	default:
		return &PersistenceError{Op: op, Err: err}
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// drivers that do not implement gorm's ErrorTranslator
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

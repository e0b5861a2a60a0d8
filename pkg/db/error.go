package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// DatabaseError hides a storage-engine failure behind the operation that
// triggered it.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	if e.Err == nil {
		return "database error: " + e.Op
	}
	return "database error: " + e.Op + ": " + e.Err.Error()
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// Wrap converts err into a *DatabaseError tagged with op. Nil stays nil and an
// existing DatabaseError is returned as is.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}
	return &DatabaseError{Op: op, Err: err}
}

func IsDatabaseError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr)
}

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

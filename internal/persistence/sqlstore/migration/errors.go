package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed indicates that applying the embedded migrations failed
	ErrMigrationFailed = errors.New("migration execution failed")

	// ErrDirtyDatabase indicates that an earlier migration stopped half way
	ErrDirtyDatabase = errors.New("database schema is dirty")

	// ErrUnsupportedDriver indicates a driver name outside sqlite and postgres
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// MigrationError wraps migration-specific errors with additional context
type MigrationError struct {
	Driver    Driver // Database engine being migrated
	Version   uint   // Schema version when the error occurred, if known
	Operation string // Operation being performed (source, driver, up, etc.)
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *MigrationError) Error() string {
	if e.Version > 0 {
		return fmt.Sprintf("migration %s@%d: %s: %v", e.Driver, e.Version, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration %s: %s: %v", e.Driver, e.Operation, e.Err)
}

// Unwrap returns the underlying error for error unwrapping
func (e *MigrationError) Unwrap() error {
	return e.Err
}

// NewMigrationError creates a new MigrationError with context
func NewMigrationError(driver Driver, version uint, operation string, err error) *MigrationError {
	return &MigrationError{
		Driver:    driver,
		Version:   version,
		Operation: operation,
		Err:       err,
	}
}

// DatabaseError wraps database-related errors raised while opening connections
type DatabaseError struct {
	Query     string // SQL query that failed (if applicable)
	Operation string // Database operation (open, ping, etc.)
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error
func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(query, operation string, err error) *DatabaseError {
	return &DatabaseError{
		Query:     query,
		Operation: operation,
		Err:       err,
	}
}

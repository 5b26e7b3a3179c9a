package types

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors wrap one of these so callers can match either.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrIO         = errors.New("i/o error")
	ErrMigration  = errors.New("migration failed")
	ErrOpen       = errors.New("cannot open table")
)

// Specific errors.
var (
	ErrTableNotFound  = fmt.Errorf("table file %w", ErrNotFound)
	ErrBackupNotFound = fmt.Errorf("backup file %w", ErrNotFound)
	ErrInvalidStatus  = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrMalformed      = errors.New("malformed table file")
	ErrSchemaInvalid  = errors.New("invalid schema")
	ErrConfigInvalid  = errors.New("invalid config")
)

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound maps to sql.ErrNoRows at the repository boundary.
	ErrNotFound = errors.New("not found")

	// ErrConcurrencyConflict means a transactional guard tripped: another
	// caller won the same transition. Idempotent callers treat it as a no-op.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// ValidationError is bad input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PreconditionError means the entity is not in the right state for the
// requested transition. Reported to the caller, not retried automatically.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

func Preconditionf(format string, args ...any) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

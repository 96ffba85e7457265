// Package common defines the error taxonomy and small helpers shared by every
// layer of the store. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Store-level errors.
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrTransactionAborted = errors.New("transaction aborted")

	// Record-level errors.
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")

	// Service-level errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnsupported  = errors.New("unsupported operation")

	// Conflict refinements, both match ErrConflict.
	ErrDuplicateKey     = fmt.Errorf("%w: duplicate key", ErrConflict)
	ErrAlreadyPublished = fmt.Errorf("%w: already published", ErrConflict)
)

// AbortError reports a read-write transaction that was rolled back. It
// matches ErrTransactionAborted and, through Unwrap, the error that caused
// the rollback, so callers can check either kind.
type AbortError struct {
	Cause error
}

func (e *AbortError) Error() string {
	if e.Cause == nil {
		return ErrTransactionAborted.Error()
	}
	return fmt.Sprintf("%s: %v", ErrTransactionAborted, e.Cause)
}

func (e *AbortError) Is(target error) bool {
	return target == ErrTransactionAborted
}

func (e *AbortError) Unwrap() error {
	return e.Cause
}

// Abort wraps err as an AbortError. Nil stays nil and an error that already
// reports an abort is returned unchanged.
func Abort(err error) error {
	if err == nil {
		return nil
	}
	var ae *AbortError
	if errors.As(err, &ae) {
		return err
	}
	return &AbortError{Cause: err}
}

// Invalid builds an ErrInvalidArgument carrying a field-specific message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

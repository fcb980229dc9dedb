package common

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError marks malformed caller input. It is always raised before
// any statement reaches the storage layer.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// PersistenceError marks a storage/connectivity failure. Callers may treat it
// as retryable, unlike business rule violations.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// WrapPersistence wraps a storage error with its originating operation,
// keeping a stack for diagnostics.
func WrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: errors.WithStack(err)}
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return stderrors.As(err, &pe)
}

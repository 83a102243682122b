package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates bad or missing input. Nothing was written.
	ErrValidation = errors.New("validation error")
	// ErrNotFound indicates a referenced order, plan, installment or client does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDestinationBank indicates a transfer destination outside the allow-list.
	ErrInvalidDestinationBank = errors.New("invalid destination bank")
	// ErrInconsistentReference indicates ids that do not belong to the same order/plan/client chain.
	ErrInconsistentReference = errors.New("inconsistent reference")
	// ErrConflict indicates the cash register is already in the requested state.
	ErrConflict = errors.New("conflict")

	ErrAlreadyOpen   = fmt.Errorf("%w: already open", ErrConflict)
	ErrAlreadyClosed = fmt.Errorf("%w: already closed", ErrConflict)
)

// StorageError wraps a database failure during the write phase.
// The driver message is kept verbatim so the operator can act on it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func inconsistentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInconsistentReference, fmt.Sprintf(format, args...))
}

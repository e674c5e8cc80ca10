// Package apperr defines the error taxonomy the messaging core exposes to
// callers. Services translate storage errors at their boundary so handlers
// only ever match on these kinds.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: an expected row is absent (conversation, message, participant).
	ErrNotFound = errors.New("not found")
	// ErrInvalidMessage: empty content with no file attached.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrUpload: file exceeds the size limit or the storage write failed.
	ErrUpload = errors.New("upload rejected")
	// ErrSubscription: realtime channel failed to establish or dropped.
	ErrSubscription = errors.New("subscription failed")
)

// PersistenceError wraps a rejected read/write from the backing store,
// including constraint violations.
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

// Persistence wraps err as a PersistenceError for operation op.
func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrTicketNotFound is returned when a ticket does not exist or is not visible
// to the requesting user. The two cases are indistinguishable on purpose.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrUnknownCommand is returned when a structured command name is not part of
// the vocabulary.
var ErrUnknownCommand = errors.New("unknown command")

// ValidationError reports that a single form field rejected its input.
// The session is not advanced.
type ValidationError struct {
	Field  string // Field name
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// StorageError wraps a failure of the ticket storage collaborator.
type StorageError struct {
	Op  string // create, list, get, delete
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a malformed structured command. Dispatch treats the
// command as absent.
type ProtocolError struct {
	Command string
	Reason  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed command %q: %s", e.Command, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}

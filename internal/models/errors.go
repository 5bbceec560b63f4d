package models

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when the trigger is activated while a submission is
// still outstanding
var ErrBusy = errors.New("a submission is already in progress")

// UserInputError is raised before any request is attempted
type UserInputError struct {
	Message string
}

func (e *UserInputError) Error() string {
	return e.Message
}

// TransportError covers network failures and undecodable responses
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackendError is a non-success HTTP status. Reason is the backend supplied
// message when one could be decoded, otherwise a generic one naming the
// status code.
type BackendError struct {
	StatusCode int
	Reason     string
}

func (e *BackendError) Error() string {
	return e.Reason
}

// ClipboardError wraps a failed clipboard write
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("failed to copy: %v", e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}

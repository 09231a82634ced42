// Package apperr defines the error kinds shared by the persistence and
// editing layers. Callers classify failures with errors.Is against the
// sentinel values below.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrConfigurationIncomplete means required store parameters are missing
	ErrConfigurationIncomplete = errors.New("configuration incomplete")
	// ErrStorageUnavailable means no store handle could be produced
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrRemoteOperationFailed means the store rejected a call
	ErrRemoteOperationFailed = errors.New("remote operation failed")
	// ErrValidationFailed means user input did not meet minimum constraints
	ErrValidationFailed = errors.New("validation failed")
)

// RemoteError carries the store's own failure for a named operation
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	return []error{ErrRemoteOperationFailed, e.Err}
}

// Remote tags err as a RemoteOperationFailed for op. A nil err stays nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}

// Unavailable builds a StorageUnavailable error with an optional cause
func Unavailable(cause error) error {
	if cause == nil {
		return ErrStorageUnavailable
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, cause)
}

// ValidationError holds per-field messages
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

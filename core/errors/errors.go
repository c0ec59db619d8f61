// Package errors provides the error taxonomy shared by the anchorleak core and its hosts.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("already exists")
)

// Validation sentinels. Each one wraps ErrInvalidInput.
var (
	ErrAnchorIdentifierLength = fmt.Errorf("%w: anchor identifier length", ErrInvalidInput)
	ErrECNLength              = fmt.Errorf("%w: ECN length", ErrInvalidInput)
	ErrUnknownCorpus          = fmt.Errorf("%w: unknown corpus", ErrInvalidInput)
	ErrMalformedEscape        = fmt.Errorf("%w: malformed escape sequence", ErrInvalidInput)
)

// LengthError reports a field whose measured length differs from the required one.
type LengthError struct {
	Field string // Display name of the field (e.g., "ECN")
	Got   int
	Want  int
	Err   error // Sentinel identifying the check
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("length(%s)=%d, but it must be %d", e.Field, e.Got, e.Want)
}

func (e *LengthError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnknownCorpusError reports a corpus selector outside the accepted set.
type UnknownCorpusError struct {
	Value    string
	Accepted []string
}

func (e *UnknownCorpusError) Error() string {
	return fmt.Sprintf("Corpus=%s, but it must be one of {%s}", e.Value, strings.Join(e.Accepted, ", "))
}

func (e *UnknownCorpusError) Unwrap() error {
	return ErrUnknownCorpus
}

// EscapeError reports a backslash sequence that could not be resolved.
type EscapeError struct {
	Offset   int    // Byte offset of the backslash in the input
	Sequence string // Offending text, starting at the backslash
	Reason   string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("malformed escape sequence %q at offset %d: %s", e.Sequence, e.Offset, e.Reason)
}

func (e *EscapeError) Unwrap() error {
	return ErrMalformedEscape
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "operation")
	ID       string // Identifier of the resource
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// OperationError is the single failure class surfaced by operations.
// Its message is the wrapped message, unchanged, so hosts can show it to the user directly.
type OperationError struct {
	Operation string
	Err       error
}

func (e *OperationError) Error() string {
	return e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Helper functions for creating common errors

// NewLength creates a LengthError
func NewLength(field string, got, want int, sentinel error) *LengthError {
	return &LengthError{
		Field: field,
		Got:   got,
		Want:  want,
		Err:   sentinel,
	}
}

// NewUnknownCorpus creates an UnknownCorpusError
func NewUnknownCorpus(value string, accepted []string) *UnknownCorpusError {
	return &UnknownCorpusError{
		Value:    value,
		Accepted: accepted,
	}
}

// NewEscape creates an EscapeError
func NewEscape(offset int, sequence, reason string) *EscapeError {
	return &EscapeError{
		Offset:   offset,
		Sequence: sequence,
		Reason:   reason,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewOperation wraps err as an OperationError. A nil err stays nil, and an
// error that already is an OperationError is returned as is.
func NewOperation(operation string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return err
	}
	return &OperationError{Operation: operation, Err: err}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

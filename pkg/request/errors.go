package request

import (
	"errors"
	"fmt"
)

var (
	// ErrRequired marks a required field submitted empty.
	ErrRequired = errors.New("is required")
	// ErrNotNumeric marks a numeric field whose value does not parse.
	ErrNotNumeric = errors.New("must be a number")
	// ErrNotInteger marks an integer field whose value does not parse.
	ErrNotInteger = errors.New("must be an integer")
	// ErrNotAllowed marks a value outside the field's declared options.
	ErrNotAllowed = errors.New("is not an allowed value")
	// ErrMissingFile marks a file field without an attached file.
	ErrMissingFile = errors.New("requires a file")
)

// InputError reports a client-side field problem detected while building the
// envelope. It is surfaced to the renderer instead of sending a request.
type InputError struct {
	Field string
	Value string
	Err   error
}

func (e *InputError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("field %s: %q %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("field %s %v", e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func inputErr(field, value string, err error) error {
	return &InputError{Field: field, Value: value, Err: err}
}

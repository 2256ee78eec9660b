package errors

import (
	stdErrors "errors"
	"fmt"
)

// PayloadError is returned when a response body does not match the expected shape.
type PayloadError struct {
	Shape string
	Err   error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("malformed %s payload: %v", e.Shape, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// NewPayloadError creates a PayloadError for the named shape.
func NewPayloadError(shape string, err error) *PayloadError {
	return &PayloadError{Shape: shape, Err: err}
}

// IsPayloadError reports whether err is a PayloadError (even when wrapped).
func IsPayloadError(err error) bool {
	var pErr *PayloadError
	return stdErrors.As(err, &pErr)
}

// Package errors holds the failure types surfaced by the catalog workflows.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// TransportError means an HTTP call could not complete or returned a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Err != nil {
			return fmt.Sprintf("request to %s failed (HTTP %d): %v", e.URL, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("request to %s failed (HTTP %d)", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps a network-level failure.
func NewTransportError(url string, err error) *TransportError {
	return &TransportError{URL: url, Err: err}
}

// NewStatusError records an unexpected HTTP status. body may be empty.
func NewStatusError(url string, statusCode int, body string) *TransportError {
	var err error
	if body != "" {
		err = stdErrors.New(body)
	}
	return &TransportError{URL: url, StatusCode: statusCode, Err: err}
}

// IsTransportError checks if error is a TransportError
func IsTransportError(err error) bool {
	var tErr *TransportError
	return stdErrors.As(err, &tErr)
}

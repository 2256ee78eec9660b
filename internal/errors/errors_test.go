package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitErrorWithRetry("slow down", 0)

	if err.Error() != "slow down" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "slow down")
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitError")
	}

	wrapped := fmt.Errorf("search failed: %w", err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}
}

func TestRateLimitErrorWithRetry(t *testing.T) {
	tests := []struct {
		name            string
		duration        time.Duration
		expectedMessage string
	}{
		{name: "zero", duration: 0, expectedMessage: "rate limited"},
		{name: "30 seconds", duration: 30 * time.Second, expectedMessage: "rate limited (retry after 30s)"},
		{name: "2 minutes", duration: 2 * time.Minute, expectedMessage: "rate limited (retry after 2m0s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRateLimitErrorWithRetry("rate limited", tt.duration)
			if err.Error() != tt.expectedMessage {
				t.Fatalf("Error message = %q, want %q", err.Error(), tt.expectedMessage)
			}
			if err.RetryAfter != tt.duration {
				t.Fatalf("RetryAfter = %v, want %v", err.RetryAfter, tt.duration)
			}
		})
	}
}

func TestTransportError_Network(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := NewTransportError("https://gutendex.com/books/", cause)

	expected := "request to https://gutendex.com/books/ failed: connection refused"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}
	if !stdErrors.Is(err, cause) {
		t.Fatalf("TransportError does not unwrap to its cause")
	}
	if !IsTransportError(stdErrors.Join(err, stdErrors.New("other"))) {
		t.Fatalf("IsTransportError returned false for joined TransportError")
	}
}

func TestTransportError_Status(t *testing.T) {
	err := NewStatusError("https://gutendex.com/books/", 502, "bad gateway")
	expected := "request to https://gutendex.com/books/ failed (HTTP 502): bad gateway"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	bare := NewStatusError("https://gutendex.com/books/", 404, "")
	if bare.Error() != "request to https://gutendex.com/books/ failed (HTTP 404)" {
		t.Fatalf("unexpected message %q", bare.Error())
	}
	if bare.StatusCode != 404 {
		t.Fatalf("StatusCode = %d, want 404", bare.StatusCode)
	}
}

func TestPayloadError(t *testing.T) {
	cause := stdErrors.New("unexpected end of JSON input")
	err := NewPayloadError("search response", cause)

	if err.Error() != "malformed search response payload: unexpected end of JSON input" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !IsPayloadError(fmt.Errorf("ingest: %w", err)) {
		t.Fatalf("IsPayloadError returned false for wrapped PayloadError")
	}
	if IsTransportError(err) {
		t.Fatalf("PayloadError must not be classified as TransportError")
	}
}

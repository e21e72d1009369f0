package ai

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed model call for retry decisions.
type ErrorKind string

const (
	// KindRateLimited marks HTTP 429 responses. Retryable.
	KindRateLimited ErrorKind = "rate_limited"
	// KindConnectionFailed marks transport errors and timeouts. Retryable.
	KindConnectionFailed ErrorKind = "connection_failed"
	// KindServiceError marks any other non-2xx response. Not retryable.
	KindServiceError ErrorKind = "service_error"
	// KindUnknown marks malformed or empty responses. Not retryable.
	KindUnknown ErrorKind = "unknown"
)

// Error is the typed failure returned by the generation client.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ai: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("ai: %s: %s", e.Kind, e.Message)
}

// Classify returns the error's kind, treating anything untyped as unknown.
func Classify(err error) ErrorKind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether another attempt could plausibly succeed.
// Only rate limiting and transport failures qualify; a 4xx/5xx body or a
// malformed response will not improve on retry.
func IsRetryable(err error) bool {
	switch Classify(err) {
	case KindRateLimited, KindConnectionFailed:
		return true
	default:
		return false
	}
}

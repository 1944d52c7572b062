package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrorType classifies an upstream failure for retry decisions.
type ErrorType string

const (
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeRateLimited  ErrorType = "rate_limited"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeUnavailable  ErrorType = "service_unavailable"
	ErrorTypeBadRequest   ErrorType = "bad_request"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// ProviderError is a structured failure from a model provider. It keeps
// the HTTP status and any Retry-After guidance so the gateway can back
// off the way the provider asked.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Type       ErrorType
	// RetryAfter is the provider-requested wait in seconds, 0 when absent.
	RetryAfter int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

func (e *ProviderError) RetryAfterDuration() time.Duration {
	if e.RetryAfter > 0 {
		return time.Duration(e.RetryAfter) * time.Second
	}
	return 0
}

// ExhaustedError marks retry exhaustion as terminal, distinct from any
// single failed attempt, so callers can tell "slow but working" from
// "broken".
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("model attempts exhausted after %d tries: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Classify maps an attempt error to its ErrorType.
func Classify(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Type
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return ErrorTypeTimeout
		}
		return ErrorTypeUnavailable
	}
	return ErrorTypeUnknown
}

// Retryable reports whether an attempt with this failure may be repeated.
// The prompt is pure, so retrying transient failures is safe; credential
// and request-shape failures would fail identically and are not retried.
func Retryable(err error) bool {
	switch Classify(err) {
	case ErrorTypeTimeout, ErrorTypeRateLimited, ErrorTypeUnavailable:
		return true
	default:
		return false
	}
}

// classifyStatus maps an HTTP status from a provider to an ErrorType.
func classifyStatus(status int) ErrorType {
	switch {
	case status == 401 || status == 403:
		return ErrorTypeUnauthorized
	case status == 429:
		return ErrorTypeRateLimited
	case status == 408 || status == 504:
		return ErrorTypeTimeout
	case status >= 500:
		return ErrorTypeUnavailable
	case status >= 400:
		return ErrorTypeBadRequest
	default:
		return ErrorTypeUnknown
	}
}

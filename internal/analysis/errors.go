package analysis

import (
	"fmt"
	"net/http"
)

// Kind tags every failure the pipeline can surface. Callers branch on the
// kind, not on message text.
type Kind string

const (
	KindEmptyInput         Kind = "empty_input"
	KindInputTooLong       Kind = "input_too_long"
	KindTimeout            Kind = "timeout"
	KindRateLimited        Kind = "rate_limited"
	KindUnauthorized       Kind = "unauthorized"
	KindServiceUnavailable Kind = "service_unavailable"
	KindUpstreamExhausted  Kind = "upstream_exhausted"
	KindMalformedResponse  Kind = "malformed_upstream_response"
	KindInvalidCategory    Kind = "invalid_category"
	KindInvalidSeverity    Kind = "invalid_severity"
	KindUnknownUpstream    Kind = "unknown_upstream_error"
)

// HTTPStatus maps a kind to the response status: caller mistakes are 4xx,
// upstream trouble is 5xx. Unauthorized here means our credential was
// rejected upstream, which is a gateway fault from the caller's view.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindEmptyInput, KindInputTooLong:
		return http.StatusBadRequest
	case KindTimeout, KindRateLimited, KindServiceUnavailable, KindUpstreamExhausted:
		return http.StatusServiceUnavailable
	case KindMalformedResponse, KindInvalidCategory, KindInvalidSeverity, KindUnauthorized, KindUnknownUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the tagged failure returned to callers. Message is safe to
// show to an operator; the wrapped cause is for logs.
type Error struct {
	Kind      Kind
	Message   string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

package usecase

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrorConfig        ErrorCode = "CONFIG_ERROR"
	ErrorUpstream      ErrorCode = "UPSTREAM_ERROR"
	ErrorEmptyResponse ErrorCode = "EMPTY_RESPONSE"
	ErrorInternal      ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages returned in the error envelope.
const (
	msgMissingKey      = "GROQ API key not configured on the server."
	msgUpstreamDefault = "Groq API error"
	msgNoResponse      = "No response from Groq"
	msgUnknown         = "Unknown server error"
)

// Error is the usecase failure carried to the transport layer. Message is
// safe to show to the caller; Err holds the cause for logs only.
type Error struct {
	Code    ErrorCode
	Reason  string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatus is the status the proxy answers with. Upstream failures keep
// the upstream status.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	if e.Code == ErrorInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func newError(code ErrorCode, reason, message string, err error) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}

// Package domainerrors defines the typed error taxonomy shared by all services.
// Services return these so transport layers can translate them into consistent
// HTTP responses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure. Codes are stable strings so they can be
// returned in API error envelopes and matched by callers.
type Code string

const (
	// CodeInvalidTransition is returned when an illegal status edge is attempted.
	// Recoverable: the caller must choose a legal target or abort.
	CodeInvalidTransition Code = "invalid_transition"

	// CodeIneligibleState is returned when an operation is attempted while the
	// case is in the wrong status (e.g. inspection creation outside screening).
	CodeIneligibleState Code = "ineligible_state"

	// CodeInvalidDecision is returned for a decision value outside the fixed set.
	CodeInvalidDecision Code = "invalid_decision"

	// CodeValidation is returned for malformed input to risk-relevant fields.
	CodeValidation Code = "validation_failure"

	// CodeDeliveryFailure marks webhook send failures. These are recorded on
	// delivery logs and never propagated to the triggering mutation.
	CodeDeliveryFailure Code = "delivery_failure"

	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeBadRequest Code = "bad_request"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal"
)

// DomainError carries a code, a human-readable message, and an optional cause.
type DomainError struct {
	Code    Code
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Err }

// New creates a DomainError with the given code and message.
func New(code Code, message string) error {
	return &DomainError{Code: code, Message: message}
}

// Newf creates a DomainError with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &DomainError{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition, CodeIneligibleState, CodeInvalidDecision, CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

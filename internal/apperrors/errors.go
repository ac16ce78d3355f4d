package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized indicates a missing, expired or rejected session.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRateMismatch indicates the backend rejected an order because the submitted
// rate identifier is no longer its current rate.
var ErrRateMismatch = errors.New("exchange rate mismatch")

// ErrNetwork indicates the exchange backend could not be reached.
var ErrNetwork = errors.New("network error")

// ErrFailure is the generic server-side rejection.
var ErrFailure = errors.New("request failed")

// ErrRateUnavailable indicates no current rate could be resolved for a currency.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// ErrSubmissionInFlight is returned when an order is submitted while another is pending.
var ErrSubmissionInFlight = errors.New("submission already in progress")

// Kind is the closed set of error classifications the exchange workflow reacts to.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindRateMismatch Kind = "RATE_MISMATCH"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindNetwork      Kind = "NETWORK_ERROR"
	KindFailure      Kind = "FAILURE"
)

// Sentinel returns the sentinel error matching the kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindRateMismatch:
		return ErrRateMismatch
	case KindUnauthorized:
		return ErrUnauthorized
	case KindNetwork:
		return ErrNetwork
	default:
		return ErrFailure
	}
}

// HTTPStatus maps a kind to the status code the BFF answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindRateMismatch:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// APIError is a classified failure from the exchange backend or from local validation.
type APIError struct {
	Kind    Kind
	Code    string // upstream code, e.g. WALLET_INSUFFICIENT_BALANCE
	Status  int    // upstream HTTP status, 0 for transport failures
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrRateMismatch) and friends match on the kind.
func (e *APIError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

// NewAppError wraps err with a kind and a human readable message.
func NewAppError(kind Kind, message string, err error) *APIError {
	return &APIError{Kind: kind, Message: message, Err: err}
}

// NewValidationError creates a validation error that never reaches the network.
func NewValidationError(format string, args ...any) *APIError {
	return &APIError{Kind: KindValidation, Code: string(KindValidation), Message: fmt.Sprintf(format, args...)}
}

// NewNetworkError classifies a transport failure.
func NewNetworkError(err error) *APIError {
	msg := "Please check your network connection"
	if err != nil {
		msg = err.Error()
	}
	return &APIError{Kind: KindNetwork, Code: string(KindNetwork), Message: msg, Err: err}
}

// KindOf classifies any error into the closed set.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrRateMismatch):
		return KindRateMismatch
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrNetwork),
		errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindFailure
}

// MessageOf returns the user facing message of err, or fallback when it has none.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsRetryable reports whether a read may be retried automatically.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch KindOf(err) {
	case KindNetwork, KindFailure:
		return true
	default:
		return false
	}
}

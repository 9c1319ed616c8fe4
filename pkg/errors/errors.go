package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Plan and payment errors. INVALID_PLAN_TYPE maps to 500 on purpose: a plan
// type outside the enum is a catalog configuration fault, not a user mistake.
var (
	ErrMissingFields       = New("MISSING_FIELDS", http.StatusBadRequest, "required fields missing")
	ErrInvalidPlanType     = New("INVALID_PLAN_TYPE", http.StatusInternalServerError, "invalid plan type")
	ErrInvalidBundlePrice  = New("INVALID_BUNDLE_PRICE", http.StatusBadRequest, "bundle price must be greater than zero")
	ErrEmptySelection      = New("EMPTY_SELECTION", http.StatusBadRequest, "at least one topic must be selected")
	ErrPlanMismatch        = New("PLAN_MISMATCH", http.StatusBadRequest, "purchase type not allowed for plan")
	ErrUnknownPurchaseKind = New("UNKNOWN_PURCHASE_KIND", http.StatusBadRequest, "unknown purchase type")
	ErrPaymentVerification = New("PAYMENT_VERIFICATION_FAILED", http.StatusBadRequest, "payment signature verification failed")
	ErrGateway             = New("PAYMENT_GATEWAY_ERROR", http.StatusBadGateway, "payment gateway request failed")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrVersionConflict  = new(ErrCodeVersionConflict, "version conflict")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")

	// Tax-compliance error taxonomy. These are part of the public contract of
	// the core services and are matched by callers with errors.Is.
	ErrMalformedIdentifier    = new(ErrCodeMalformedIdentifier, "malformed tax identifier")
	ErrRegistryUnavailable    = new(ErrCodeRegistryUnavailable, "tax registry unavailable")
	ErrNoApplicableRule       = new(ErrCodeNoApplicableRule, "no applicable rate rule")
	ErrMissingBuyerIdentifier = new(ErrCodeMissingBuyerIdentifier, "missing buyer tax identifier")
	ErrPolicyViolation        = new(ErrCodePolicyViolation, "refund policy violation")
	ErrUnknownInvoice         = new(ErrCodeUnknownInvoice, "unknown invoice")
	ErrIncompletePeriod       = new(ErrCodeIncompletePeriod, "reporting period incomplete")
	ErrNumberingConflict      = new(ErrCodeNumberingConflict, "document numbering conflict")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrHTTPClient:       http.StatusInternalServerError,
		ErrDatabase:         http.StatusInternalServerError,
		ErrNotFound:         http.StatusNotFound,
		ErrAlreadyExists:    http.StatusConflict,
		ErrVersionConflict:  http.StatusConflict,
		ErrValidation:       http.StatusBadRequest,
		ErrInvalidOperation: http.StatusBadRequest,
		ErrSystem:           http.StatusInternalServerError,

		ErrMalformedIdentifier:    http.StatusBadRequest,
		ErrRegistryUnavailable:    http.StatusServiceUnavailable,
		ErrNoApplicableRule:       http.StatusUnprocessableEntity,
		ErrMissingBuyerIdentifier: http.StatusBadRequest,
		ErrPolicyViolation:        http.StatusUnprocessableEntity,
		ErrUnknownInvoice:         http.StatusNotFound,
		ErrIncompletePeriod:       http.StatusConflict,
		ErrNumberingConflict:      http.StatusInternalServerError,
	}
)

const (
	ErrCodeHTTPClient       = "http_client_error"
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeVersionConflict  = "version_conflict"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodeDatabase         = "database_error"

	ErrCodeMalformedIdentifier    = "malformed_identifier"
	ErrCodeRegistryUnavailable    = "registry_unavailable"
	ErrCodeNoApplicableRule       = "no_applicable_rule"
	ErrCodeMissingBuyerIdentifier = "missing_buyer_identifier"
	ErrCodePolicyViolation        = "policy_violation"
	ErrCodeUnknownInvoice         = "unknown_invoice"
	ErrCodeIncompletePeriod       = "incomplete_period"
	ErrCodeNumberingConflict      = "numbering_conflict"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// new creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsRegistryUnavailable checks if an error is a registry availability error.
// These are non-fatal: callers degrade identifier confidence and continue.
func IsRegistryUnavailable(err error) bool {
	return errors.Is(err, ErrRegistryUnavailable)
}

// IsPolicyViolation checks if an error is a refund policy violation
func IsPolicyViolation(err error) bool {
	return errors.Is(err, ErrPolicyViolation)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// Package errors defines domain-specific error types.
// Using typed errors (instead of strings) allows clients to handle specific cases.
//
// Pattern: Sentinel Errors + Custom Error Types
//
// Propagation policy: any failure inside an atomic unit aborts the whole
// unit; callers observe exactly one typed error and never a partial write.
package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors for domain validation.
var (
	// Entity resolution errors
	ErrEntityNotFound      = errors.New("entity not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrSessionNotFound     = errors.New("parking session not found")
	ErrSamanNotFound       = errors.New("saman not found")
	ErrAuthorityNotFound   = errors.New("local authority not found")
	ErrEntityAlreadyExists = errors.New("entity already exists")

	// User errors
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthorized      = errors.New("not authorized for this operation")

	// Wallet errors
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrInvalidAmount     = errors.New("amount must be positive")

	// Payment gateway errors
	ErrPaymentIncomplete = errors.New("payment was not completed")
	ErrAmountMissing     = errors.New("captured amount missing from gateway response")
	ErrOrderNotFound     = errors.New("payment order not found")

	// State machine errors
	ErrSessionNotOngoing = errors.New("parking session is not ongoing")
	ErrSamanAlreadyPaid  = errors.New("saman has already been paid")
)

// DomainError wraps an error with a stable machine-readable code.
// The HTTP layer maps Code straight onto the API envelope, so internals
// are never exposed to clients.
type DomainError struct {
	Code    string // e.g. "INSUFFICIENT_FUNDS"
	Message string // Human-readable message
	Err     error  // Underlying error (for error chains)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// ValidationError represents a validation failure with field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(e))
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ConflictError represents a uniqueness or optimistic-locking clash.
// Duplicate emails/phones surface this immediately; transient optimistic
// clashes may be retried a bounded number of times before surfacing.
type ConflictError struct {
	Resource string // e.g. "User", "Vehicle"
	Message  string
	Retryable bool
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Message)
}

// NewConflict creates a terminal conflict (e.g. duplicate email).
func NewConflict(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

// NewTransientConflict creates a retryable conflict (optimistic-lock clash).
func NewTransientConflict(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message, Retryable: true}
}

// ExternalServiceError represents a failure talking to a collaborator
// (payment gateway, SMS/email provider). Notification failures never roll
// back wallet or session state; gateway failures before the atomic unit
// leave local state untouched.
type ExternalServiceError struct {
	Service string // e.g. "paypal", "twilio"
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("external service %s failed: %s: %v", e.Service, e.Message, e.Err)
	}
	return fmt.Sprintf("external service %s failed: %s", e.Service, e.Message)
}

// Unwrap implements error unwrapping.
func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// NewExternalServiceError creates a new external service error.
func NewExternalServiceError(service, message string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Message: message, Err: err}
}

// TransactionFailedError means an atomic unit failed to commit.
// All writes performed inside the unit were rolled back.
type TransactionFailedError struct {
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Operation, e.Err)
}

// Unwrap implements error unwrapping.
func (e *TransactionFailedError) Unwrap() error {
	return e.Err
}

// NewTransactionFailed creates a new atomic-unit failure error.
func NewTransactionFailed(operation string, err error) *TransactionFailedError {
	return &TransactionFailedError{Operation: operation, Err: err}
}

// Helper predicates for common error checking.

// IsNotFound checks if an error is any of the "not found" sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrVehicleNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSamanNotFound) ||
		errors.Is(err, ErrAuthorityNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	var valErr ValidationError
	var valErrs ValidationErrors
	return errors.As(err, &valErr) || errors.As(err, &valErrs)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsRetryableConflict checks for a transient optimistic-lock clash.
func IsRetryableConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Retryable
}

// IsExternal checks if an error came from an external collaborator.
func IsExternal(err error) bool {
	var ee *ExternalServiceError
	return errors.As(err, &ee)
}

// IsTransactionFailed checks if an atomic unit failed to commit.
func IsTransactionFailed(err error) bool {
	var te *TransactionFailedError
	return errors.As(err, &te)
}

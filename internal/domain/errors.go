package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrLimitExceeded(msg string) *AppError {
	return &AppError{Code: "LIMIT_EXCEEDED", Message: msg, Status: 400}
}

func ErrInsufficientFunds(msg string) *AppError {
	return &AppError{Code: "INSUFFICIENT_FUNDS", Message: msg, Status: 400}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

// ErrConflictCause keeps the storage error in the chain so callers can
// classify the conflict (a lost unique-index race stays retryable).
func ErrConflictCause(msg string, cause error) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409, Cause: cause}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

// ErrAccountIntegrity signals a data-consistency defect upstream of the core
// (e.g. an active player with no REAL wallet). The message sent to callers
// is generic; the detail stays in the wrapped cause for logs.
func ErrAccountIntegrity(detail string) *AppError {
	return &AppError{Code: "ACCOUNT_INTEGRITY", Message: "account integrity error", Status: 500, Cause: fmt.Errorf("%s", detail)}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

package errors

import (
	"fmt"
)

// AppError is a structured error carrying a stable code alongside the message.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with a code and message.
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(code string, cause error, format string, args ...interface{}) *AppError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// GetCode returns the error code if err is an AppError, otherwise "UNKNOWN".
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Error codes. Note that probabilistic misses (outside a time window, outside
// histogram range, catalog exhaustion) are value returns, not errors; the
// codes below cover the conditions that must fail loudly.
const (
	// CodeDomainMiss marks a lookup whose query lies outside the covered
	// domain of a table, where no sentinel zero would be semantically valid.
	CodeDomainMiss = "DOMAIN_MISS"
	// CodeBadTable marks a malformed or inconsistent input table.
	CodeBadTable = "BAD_TABLE"
	// CodeConfig marks invalid configuration or search parameters.
	CodeConfig = "CONFIG"
	// CodeStore marks a persistence failure in the table store.
	CodeStore = "STORE"
)

// DomainMiss constructs the loud lookup-miss error.
func DomainMiss(format string, args ...interface{}) *AppError {
	return New(CodeDomainMiss, fmt.Sprintf(format, args...))
}

// BadTable constructs a malformed-table error.
func BadTable(format string, args ...interface{}) *AppError {
	return New(CodeBadTable, fmt.Sprintf(format, args...))
}

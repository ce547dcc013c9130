package errors

import (
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeState
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypeClosed
	ErrorTypeDatabase
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeState:
		return "state"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypeClosed:
		return "closed"
	case ErrorTypeDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// Error kinds carried in AppError.Code. Callers branch on these to render a
// precise message; they are part of the service contract and never change
// once published.
const (
	KindInvalidFormat         = "INVALID_FORMAT"
	KindInvalidMonth          = "INVALID_MONTH"
	KindInvalidInterval       = "INVALID_INTERVAL"
	KindAlreadyClockedIn      = "ALREADY_CLOCKED_IN"
	KindAlreadyOnBreak        = "ALREADY_ON_BREAK"
	KindNoOpenBreak           = "NO_OPEN_BREAK"
	KindNoOpenSession         = "NO_OPEN_SESSION"
	KindOpenBreakMustEndFirst = "OPEN_BREAK_MUST_END_FIRST"
	KindOverlappingSession    = "OVERLAPPING_SESSION"
	KindOverlappingBreak      = "OVERLAPPING_BREAK"
	KindMonthClosed           = "MONTH_CLOSED"
	KindNotFound              = "NOT_FOUND"
	KindStorageConflict       = "STORAGE_CONFLICT"
	KindDatabase              = "DATABASE_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error kind
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Type == appErr.Type && e.Code == appErr.Code
	}
	return false
}

// IsType checks if this error is of the specified type
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetContext retrieves context information from the error
func (e *AppError) GetContext(key string) (interface{}, bool) {
	if e.Context == nil {
		return nil, false
	}
	value, exists := e.Context[key]
	return value, exists
}

package errors

import (
	"errors"
	"fmt"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewInvalidFormatError reports a period string that does not match YYYY-MM
func NewInvalidFormatError(text string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("invalid period format: %q (expected YYYY-MM)", text),
		Code:    KindInvalidFormat,
		Context: map[string]interface{}{"period": text},
	}
}

// NewInvalidMonthError reports a month component outside [1,12]
func NewInvalidMonthError(month int) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("invalid month: %d (must be between 1 and 12)", month),
		Code:    KindInvalidMonth,
		Context: map[string]interface{}{"month": month},
	}
}

// NewInvalidIntervalError reports an interval whose end precedes its start
func NewInvalidIntervalError(detail string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("invalid interval: %s", detail),
		Code:    KindInvalidInterval,
		Context: make(map[string]interface{}),
	}
}

// NewAlreadyClockedInError reports a clock-in while an open session exists
func NewAlreadyClockedInError(userID string) *AppError {
	return &AppError{
		Type:    ErrorTypeState,
		Message: "an open work session already exists",
		Code:    KindAlreadyClockedIn,
		Context: map[string]interface{}{"user_id": userID},
	}
}

// NewAlreadyOnBreakError reports a break-start while an open break exists
func NewAlreadyOnBreakError(userID string) *AppError {
	return &AppError{
		Type:    ErrorTypeState,
		Message: "an open break already exists on the current session",
		Code:    KindAlreadyOnBreak,
		Context: map[string]interface{}{"user_id": userID},
	}
}

// NewNoOpenBreakError reports a break-end with no open break
func NewNoOpenBreakError(userID string) *AppError {
	return &AppError{
		Type:    ErrorTypeState,
		Message: "no open break to end",
		Code:    KindNoOpenBreak,
		Context: map[string]interface{}{"user_id": userID},
	}
}

// NewNoOpenSessionError reports an action that requires an open session
func NewNoOpenSessionError(userID string) *AppError {
	return &AppError{
		Type:    ErrorTypeState,
		Message: "no open work session",
		Code:    KindNoOpenSession,
		Context: map[string]interface{}{"user_id": userID},
	}
}

// NewOpenBreakMustEndFirstError reports a clock-out while a break is open
func NewOpenBreakMustEndFirstError(userID string) *AppError {
	return &AppError{
		Type:    ErrorTypeState,
		Message: "the open break must be ended before clocking out",
		Code:    KindOpenBreakMustEndFirst,
		Context: map[string]interface{}{"user_id": userID},
	}
}

// NewOverlappingSessionError reports two sessions on the same day that overlap in time
func NewOverlappingSessionError(detail string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("overlapping sessions: %s", detail),
		Code:    KindOverlappingSession,
		Context: make(map[string]interface{}),
	}
}

// NewOverlappingBreakError reports a break that overlaps another break or
// falls outside its session bounds
func NewOverlappingBreakError(detail string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("invalid break placement: %s", detail),
		Code:    KindOverlappingBreak,
		Context: make(map[string]interface{}),
	}
}

// NewMonthClosedError reports a mutation against a closed month
func NewMonthClosedError(userID string, period string) *AppError {
	return &AppError{
		Type:    ErrorTypeClosed,
		Message: fmt.Sprintf("month %s is closed for editing", period),
		Code:    KindMonthClosed,
		Context: map[string]interface{}{
			"user_id": userID,
			"period":  period,
		},
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    KindNotFound,
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewStorageConflictError reports a lost concurrent-write race. The caller
// may retry once with fresh data; the services never retry themselves.
func NewStorageConflictError(operation string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("concurrent update detected during %s", operation),
		Code:    KindStorageConflict,
		Context: map[string]interface{}{"operation": operation},
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Code:    KindDatabase,
		Cause:   cause,
		Context: map[string]interface{}{"operation": operation},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// IsKind checks if the error carries the specified error kind
func IsKind(err error, kind string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == kind
	}
	return false
}

// Kind returns the error kind carried by the error, or empty string for
// errors that are not AppErrors
func Kind(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

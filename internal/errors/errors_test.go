package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "should format error without cause",
			err:      NewNoOpenSessionError("u1"),
			expected: "state: no open work session",
		},
		{
			name:     "should include cause when present",
			err:      NewDatabaseError("insert session", errors.New("disk full")),
			expected: "database: database operation failed: insert session (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name         string
		err          *AppError
		expectedKind string
		expectedType ErrorType
	}{
		{"invalid format", NewInvalidFormatError("2024/01"), KindInvalidFormat, ErrorTypeValidation},
		{"invalid month", NewInvalidMonthError(13), KindInvalidMonth, ErrorTypeValidation},
		{"invalid interval", NewInvalidIntervalError("end before start"), KindInvalidInterval, ErrorTypeValidation},
		{"already clocked in", NewAlreadyClockedInError("u1"), KindAlreadyClockedIn, ErrorTypeState},
		{"already on break", NewAlreadyOnBreakError("u1"), KindAlreadyOnBreak, ErrorTypeState},
		{"no open break", NewNoOpenBreakError("u1"), KindNoOpenBreak, ErrorTypeState},
		{"no open session", NewNoOpenSessionError("u1"), KindNoOpenSession, ErrorTypeState},
		{"open break must end first", NewOpenBreakMustEndFirstError("u1"), KindOpenBreakMustEndFirst, ErrorTypeState},
		{"overlapping session", NewOverlappingSessionError("a vs b"), KindOverlappingSession, ErrorTypeValidation},
		{"overlapping break", NewOverlappingBreakError("b1 vs b2"), KindOverlappingBreak, ErrorTypeValidation},
		{"month closed", NewMonthClosedError("u1", "2024-06"), KindMonthClosed, ErrorTypeClosed},
		{"not found", NewNotFoundError("attendance record", "u1/2024-06-15"), KindNotFound, ErrorTypeNotFound},
		{"storage conflict", NewStorageConflictError("replace sessions"), KindStorageConflict, ErrorTypeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKind, tt.err.Code)
			assert.True(t, tt.err.IsType(tt.expectedType))
			assert.True(t, IsKind(tt.err, tt.expectedKind))
			assert.Equal(t, tt.expectedKind, Kind(tt.err))
		})
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("should unwrap wrapped AppError", func(t *testing.T) {
		inner := NewMonthClosedError("u1", "2024-06")
		wrapped := fmt.Errorf("edit rejected: %w", inner)

		appErr, ok := AsAppError(wrapped)
		require.True(t, ok)
		assert.Equal(t, KindMonthClosed, appErr.Code)
		assert.True(t, IsKind(wrapped, KindMonthClosed))
	})

	t.Run("should return false for plain errors", func(t *testing.T) {
		_, ok := AsAppError(errors.New("plain"))
		assert.False(t, ok)
		assert.Empty(t, Kind(errors.New("plain")))
	})
}

func TestAppError_Is(t *testing.T) {
	t.Run("should match same type and kind", func(t *testing.T) {
		assert.ErrorIs(t, NewNoOpenBreakError("u1"), NewNoOpenBreakError("u2"))
	})

	t.Run("should not match different kinds", func(t *testing.T) {
		assert.NotErrorIs(t, NewNoOpenBreakError("u1"), NewNoOpenSessionError("u1"))
	})
}

func TestAppError_Context(t *testing.T) {
	err := NewStorageConflictError("close session").WithContext("record_id", int64(7))

	value, exists := err.GetContext("record_id")
	require.True(t, exists)
	assert.Equal(t, int64(7), value)

	_, exists = err.GetContext("missing")
	assert.False(t, exists)
}

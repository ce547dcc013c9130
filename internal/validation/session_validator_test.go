package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errors"
)

var testNow = time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2024, 6, 3, hour, minute, 0, 0, time.UTC)
}

func atPtr(hour, minute int) *time.Time {
	t := at(hour, minute)
	return &t
}

func TestSessionValidator_ValidateSession(t *testing.T) {
	validator := NewSessionValidator()

	tests := []struct {
		name         string
		session      domain.WorkSession
		expectedKind string
	}{
		{
			name: "should accept a closed session with ordered breaks",
			session: domain.WorkSession{
				ClockIn:  at(9, 0),
				ClockOut: atPtr(18, 0),
				Breaks: []domain.Break{
					{Start: at(10, 0), End: atPtr(10, 15)},
					{Start: at(12, 0), End: atPtr(12, 30)},
				},
			},
		},
		{
			name: "should accept an open session with an open last break",
			session: domain.WorkSession{
				ClockIn: at(9, 0),
				Breaks: []domain.Break{
					{Start: at(10, 0), End: atPtr(10, 15)},
					{Start: at(12, 0)},
				},
			},
		},
		{
			name: "should reject clock-out before clock-in",
			session: domain.WorkSession{
				ClockIn:  at(18, 0),
				ClockOut: atPtr(9, 0),
			},
			expectedKind: errors.KindInvalidInterval,
		},
		{
			name: "should reject break end before break start",
			session: domain.WorkSession{
				ClockIn:  at(9, 0),
				ClockOut: atPtr(18, 0),
				Breaks: []domain.Break{
					{Start: at(12, 0), End: atPtr(11, 0)},
				},
			},
			expectedKind: errors.KindInvalidInterval,
		},
		{
			name: "should reject break starting before clock-in",
			session: domain.WorkSession{
				ClockIn:  at(9, 0),
				ClockOut: atPtr(18, 0),
				Breaks: []domain.Break{
					{Start: at(8, 0), End: atPtr(8, 30)},
				},
			},
			expectedKind: errors.KindOverlappingBreak,
		},
		{
			name: "should reject break ending after clock-out",
			session: domain.WorkSession{
				ClockIn:  at(9, 0),
				ClockOut: atPtr(18, 0),
				Breaks: []domain.Break{
					{Start: at(17, 30), End: atPtr(18, 30)},
				},
			},
			expectedKind: errors.KindOverlappingBreak,
		},
		{
			name: "should reject overlapping breaks",
			session: domain.WorkSession{
				ClockIn:  at(9, 0),
				ClockOut: atPtr(18, 0),
				Breaks: []domain.Break{
					{Start: at(12, 0), End: atPtr(13, 0)},
					{Start: at(12, 30), End: atPtr(13, 30)},
				},
			},
			expectedKind: errors.KindOverlappingBreak,
		},
		{
			name: "should reject breaks out of start order",
			session: domain.WorkSession{
				ClockIn:  at(9, 0),
				ClockOut: atPtr(18, 0),
				Breaks: []domain.Break{
					{Start: at(14, 0), End: atPtr(14, 30)},
					{Start: at(10, 0), End: atPtr(10, 30)},
				},
			},
			expectedKind: errors.KindOverlappingBreak,
		},
		{
			name: "should reject open break on a clocked-out session",
			session: domain.WorkSession{
				ClockIn:  at(9, 0),
				ClockOut: atPtr(18, 0),
				Breaks: []domain.Break{
					{Start: at(12, 0)},
				},
			},
			expectedKind: errors.KindOverlappingBreak,
		},
		{
			name: "should reject a session longer than the configured maximum",
			session: domain.WorkSession{
				ClockIn:  at(9, 0),
				ClockOut: func() *time.Time { t := at(9, 0).Add(25 * time.Hour); return &t }(),
			},
			expectedKind: "VALIDATION_FAILED",
		},
		{
			name: "should reject a clock-in far outside the accepted date range",
			session: domain.WorkSession{
				ClockIn:  time.Date(1990, 1, 1, 9, 0, 0, 0, time.UTC),
				ClockOut: func() *time.Time { t := time.Date(1990, 1, 1, 17, 0, 0, 0, time.UTC); return &t }(),
			},
			expectedKind: "VALIDATION_FAILED",
		},
		{
			name: "should reject open break that is not the last break",
			session: domain.WorkSession{
				ClockIn: at(9, 0),
				Breaks: []domain.Break{
					{Start: at(10, 0)},
					{Start: at(12, 0), End: atPtr(12, 30)},
				},
			},
			expectedKind: errors.KindOverlappingBreak,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateSession(tt.session, testNow)

			if tt.expectedKind == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.IsKind(err, tt.expectedKind),
					"expected kind %s, got %v", tt.expectedKind, err)
			}
		})
	}
}

func TestSessionValidator_ValidateDay(t *testing.T) {
	validator := NewSessionValidator()

	tests := []struct {
		name         string
		sessions     []domain.WorkSession
		expectedKind string
	}{
		{
			name: "should accept non-overlapping sessions in any order",
			sessions: []domain.WorkSession{
				{ClockIn: at(13, 0), ClockOut: atPtr(18, 0)},
				{ClockIn: at(9, 0), ClockOut: atPtr(12, 0)},
			},
		},
		{
			name: "should accept sessions that touch at a boundary",
			sessions: []domain.WorkSession{
				{ClockIn: at(9, 0), ClockOut: atPtr(12, 0)},
				{ClockIn: at(12, 0), ClockOut: atPtr(15, 0)},
			},
		},
		{
			name: "should reject overlapping sessions",
			sessions: []domain.WorkSession{
				{ClockIn: at(9, 0), ClockOut: atPtr(12, 0)},
				{ClockIn: at(11, 0), ClockOut: atPtr(13, 0)},
			},
			expectedKind: errors.KindOverlappingSession,
		},
		{
			name: "should reject more than one open session",
			sessions: []domain.WorkSession{
				{ClockIn: at(9, 0)},
				{ClockIn: at(13, 0)},
			},
			expectedKind: errors.KindOverlappingSession,
		},
		{
			name: "should surface per-session failures first",
			sessions: []domain.WorkSession{
				{ClockIn: at(18, 0), ClockOut: atPtr(9, 0)},
				{ClockIn: at(8, 0), ClockOut: atPtr(19, 0)},
			},
			expectedKind: errors.KindInvalidInterval,
		},
		{
			name:     "should accept an empty replacement set",
			sessions: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateDay(tt.sessions, testNow)

			if tt.expectedKind == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.IsKind(err, tt.expectedKind),
					"expected kind %s, got %v", tt.expectedKind, err)
			}
		})
	}
}

func TestSessionValidator_ValidateTasks(t *testing.T) {
	validator := NewSessionValidator()

	t.Run("should accept reasonable task annotations", func(t *testing.T) {
		hours := 2.5
		err := validator.ValidateTasks([]domain.TaskAnnotation{
			{TaskName: "code review", Hours: &hours},
			{TaskName: "standup"},
		})
		assert.NoError(t, err)
	})

	t.Run("should reject an empty task name", func(t *testing.T) {
		err := validator.ValidateTasks([]domain.TaskAnnotation{{TaskName: "  "}})
		assert.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	})

	t.Run("should reject an oversized task name", func(t *testing.T) {
		err := validator.ValidateTasks([]domain.TaskAnnotation{
			{TaskName: strings.Repeat("x", 300)},
		})
		assert.Error(t, err)
	})
}

package services

import (
	"context"
	"time"

	"attendance-tracker/internal/domain"
)

// ClockAction identifies one of the four clock events.
type ClockAction string

const (
	ActionClockIn    ClockAction = "clock-in"
	ActionClockOut   ClockAction = "clock-out"
	ActionBreakStart ClockAction = "break-start"
	ActionBreakEnd   ClockAction = "break-end"
)

// IsValid reports whether the action is one of the known clock events.
func (a ClockAction) IsValid() bool {
	switch a {
	case ActionClockIn, ActionClockOut, ActionBreakStart, ActionBreakEnd:
		return true
	}
	return false
}

// ClockRequest carries one clock event. Timestamp overrides the wall clock
// for backdated entry; Tasks is an orthogonal annotation payload that never
// participates in the state machine guards.
type ClockRequest struct {
	UserID    string
	Action    ClockAction
	Timestamp *time.Time
	Tasks     []domain.TaskAnnotation
}

// ClockService drives the clock event state machine.
type ClockService interface {
	// Clock applies one clock event and returns the user's new state.
	Clock(ctx context.Context, req ClockRequest) (domain.ClockState, error)

	// CurrentState derives the user's clock state without mutating anything.
	CurrentState(ctx context.Context, userID string) (domain.ClockState, error)
}

// EditService reconciles administrative full-day edits.
type EditService interface {
	// ReplaceDay swaps the whole session set for (user, date) after
	// validating the replacement against every invariant.
	ReplaceDay(ctx context.Context, userID string, date time.Time, sessions []domain.WorkSession) error
}

// ReportService serves the read side: day and month queries with derived totals.
type ReportService interface {
	// GetDay returns the record for (user, date), or nil if none exists yet.
	GetDay(ctx context.Context, userID string, date time.Time) (*domain.AttendanceRecord, error)

	// GetMonth returns one record per calendar day of the period, in order,
	// zero-valued for days without stored data.
	GetMonth(ctx context.Context, userID string, period string) ([]domain.AttendanceRecord, error)

	// InvalidateUser drops any cached month results for the user.
	InvalidateUser(userID string)
}

// ClosureService manages month closure markers.
type ClosureService interface {
	// CloseMonth freezes the (user, period) pair. Idempotent: closing an
	// already-closed month succeeds without any state change.
	CloseMonth(ctx context.Context, userID string, period string) error

	// IsClosed reports whether the (user, period) pair is closed.
	IsClosed(ctx context.Context, userID string, period string) (bool, error)
}

// ClockEvent is the payload handed to the notification side channel on
// clock-in and clock-out.
type ClockEvent struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Action    ClockAction       `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	State     domain.ClockState `json:"state"`
}

// Notifier delivers clock events to an external channel. Delivery is
// fire-and-forget: a failure is logged by the caller and never converts a
// successful state transition into a reported failure.
type Notifier interface {
	Notify(ctx context.Context, event ClockEvent) error
}

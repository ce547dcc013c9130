package validation

import (
	"fmt"
	"sort"
	"time"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errors"
)

// SessionValidator validates work sessions and full-day replacement sets.
// Validation is strict here: inverted intervals are rejected, not clamped.
// The tolerant floor-at-zero policy applies only to total computation over
// historical data that already made it into the store.
type SessionValidator struct {
	validator *Validator
}

// NewSessionValidator creates a new session validator
func NewSessionValidator() *SessionValidator {
	return &SessionValidator{validator: NewValidator()}
}

// NewSessionValidatorWithBase creates a session validator sharing a
// configured base validator
func NewSessionValidatorWithBase(base *Validator) *SessionValidator {
	return &SessionValidator{validator: base}
}

// ValidateSession checks one session in isolation: ordered clock pair,
// breaks inside the session bounds, breaks start-ordered and pairwise
// non-overlapping, and at most one open break sitting last on an open
// session.
func (sv *SessionValidator) ValidateSession(session domain.WorkSession, now time.Time) error {
	if session.ClockOut != nil {
		spanMs, err := domain.DurationMs(session.ClockIn, *session.ClockOut)
		if err != nil {
			return err
		}
		if spanMs > sv.validator.getMaxSessionDuration().Milliseconds() {
			return errors.NewValidationError(fmt.Sprintf(
				"session exceeds the maximum duration of %s", sv.validator.getMaxSessionDuration()), nil)
		}
	}
	if !sv.validator.IsReasonableDate(session.ClockIn) {
		return errors.NewValidationError(fmt.Sprintf(
			"clock-in %s is outside the accepted date range", session.ClockIn.Format(time.RFC3339)), nil)
	}

	end := session.End(now)
	for i, brk := range session.Breaks {
		if brk.End != nil {
			if _, err := domain.DurationMs(brk.Start, *brk.End); err != nil {
				return err
			}
		}

		if brk.End == nil {
			if session.ClockOut != nil {
				return errors.NewOverlappingBreakError("open break on a clocked-out session")
			}
			if i != len(session.Breaks)-1 {
				return errors.NewOverlappingBreakError("open break is not the most recently started break")
			}
		}

		if brk.Start.Before(session.ClockIn) {
			return errors.NewOverlappingBreakError(fmt.Sprintf(
				"break starting %s lies before clock-in", brk.Start.Format(time.RFC3339)))
		}
		if brk.End != nil && brk.End.After(end) {
			return errors.NewOverlappingBreakError(fmt.Sprintf(
				"break ending %s lies after session end", brk.End.Format(time.RFC3339)))
		}

		if i > 0 {
			prev := session.Breaks[i-1]
			if brk.Start.Before(prev.Start) {
				return errors.NewOverlappingBreakError("breaks are not ordered by start time")
			}
			if prev.End != nil && brk.Start.Before(*prev.End) {
				return errors.NewOverlappingBreakError(fmt.Sprintf(
					"break starting %s overlaps the previous break", brk.Start.Format(time.RFC3339)))
			}
		}
	}

	return nil
}

// ValidateDay checks a full replacement set for one day, failing fast in
// the documented order: each session individually well-formed first, then
// pairwise session overlap across the day. Sorting by clock-in makes the
// adjacent-pair check sufficient.
func (sv *SessionValidator) ValidateDay(sessions []domain.WorkSession, now time.Time) error {
	openCount := 0
	for _, session := range sessions {
		if err := sv.ValidateSession(session, now); err != nil {
			return err
		}
		if session.IsOpen() {
			openCount++
		}
	}
	if openCount > 1 {
		return errors.NewOverlappingSessionError("more than one open session in the replacement set")
	}

	sorted := make([]domain.WorkSession, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ClockIn.Before(sorted[j].ClockIn)
	})

	for i := 1; i < len(sorted); i++ {
		prevEnd := sorted[i-1].End(now)
		if sorted[i].ClockIn.Before(prevEnd) {
			return errors.NewOverlappingSessionError(fmt.Sprintf(
				"session starting %s overlaps the session ending %s",
				sorted[i].ClockIn.Format(time.RFC3339), prevEnd.Format(time.RFC3339)))
		}
	}

	return nil
}

// ValidateTasks checks the optional task annotations carried on a clock event.
func (sv *SessionValidator) ValidateTasks(tasks []domain.TaskAnnotation) error {
	for _, task := range tasks {
		if !sv.validator.IsNonEmptyString(task.TaskName) {
			return errors.NewValidationError("task name cannot be empty", nil).
				WithContext("field", "task_name")
		}
		if !sv.validator.IsValidTaskNameLength(task.TaskName) {
			return errors.NewValidationError(fmt.Sprintf(
				"task name exceeds %d characters", sv.validator.getTaskNameMaxLength()), nil).
				WithContext("field", "task_name")
		}
	}
	return nil
}

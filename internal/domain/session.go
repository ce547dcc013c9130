package domain

import (
	"time"
)

// Break represents a sub-interval of a work session during which work time
// does not accrue. An open break (End == nil) is only legal as the most
// recently started break of a session that is not yet clocked out.
type Break struct {
	ID    int64
	Start time.Time
	End   *time.Time
}

// IsOpen returns true if the break has not been ended yet.
func (b Break) IsOpen() bool {
	return b.End == nil
}

// TaskAnnotation is an optional payload carried on a clock event and
// persisted alongside the generated session. It never participates in
// state machine guards or totals.
type TaskAnnotation struct {
	ID       int64
	TaskName string
	Hours    *float64
}

// WorkSession represents one contiguous clock-in/clock-out span for a user
// on a given day. ClockOut == nil marks the user's current open session;
// at most one open session exists per user across all days.
type WorkSession struct {
	ID       int64
	ClockIn  time.Time
	ClockOut *time.Time
	Breaks   []Break
	Tasks    []TaskAnnotation
}

// IsOpen returns true if the session has not been clocked out yet.
func (s WorkSession) IsOpen() bool {
	return s.ClockOut == nil
}

// OpenBreak returns the session's open break, or nil if every break has
// ended. Breaks are insertion-ordered so only the last one can be open.
func (s WorkSession) OpenBreak() *Break {
	if len(s.Breaks) == 0 {
		return nil
	}
	last := &s.Breaks[len(s.Breaks)-1]
	if last.IsOpen() {
		return last
	}
	return nil
}

// HasOpenBreak reports whether the user is currently on break within this
// session. Used for presentation state, never for completed totals.
func (s WorkSession) HasOpenBreak() bool {
	return s.OpenBreak() != nil
}

// End returns the effective end of the session for bounds checking: the
// clock-out time when present, otherwise the supplied current time.
func (s WorkSession) End(now time.Time) time.Time {
	if s.ClockOut != nil {
		return *s.ClockOut
	}
	return now
}

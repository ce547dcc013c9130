package domain

import (
	"fmt"
	"time"

	"attendance-tracker/internal/errors"
)

// DayTotals is the authoritative aggregation output for one day's sessions.
type DayTotals struct {
	WorkMs  int64 `json:"work_total_ms"`
	BreakMs int64 `json:"break_total_ms"`
}

// DurationMs returns the length of [start, end] in milliseconds. It rejects
// inverted intervals; callers on tolerant paths clamp with ClampedDurationMs
// instead.
func DurationMs(start, end time.Time) (int64, error) {
	if end.Before(start) {
		return 0, errors.NewInvalidIntervalError(
			fmt.Sprintf("end %s precedes start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	return end.Sub(start).Milliseconds(), nil
}

// ClampedDurationMs floors inverted intervals at zero. Totals stay tolerant
// of historically inconsistent data; strict rejection belongs to the
// validation paths.
func ClampedDurationMs(start, end time.Time) int64 {
	ms := end.Sub(start).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}

// SumBreakMs sums the completed breaks of a session. An open break
// contributes nothing to completed totals; it is surfaced separately via
// WorkSession.HasOpenBreak for presentation.
func SumBreakMs(s WorkSession) int64 {
	var total int64
	for _, b := range s.Breaks {
		if b.End == nil {
			continue
		}
		total += ClampedDurationMs(b.Start, *b.End)
	}
	return total
}

// SessionWorkMs returns the worked milliseconds of a completed session:
// its span minus its completed breaks, floored at zero. An open session is
// in progress and contributes nothing.
func SessionWorkMs(s WorkSession) int64 {
	if s.ClockOut == nil {
		return 0
	}
	work := ClampedDurationMs(s.ClockIn, *s.ClockOut) - SumBreakMs(s)
	if work < 0 {
		return 0
	}
	return work
}

// ComputeDayTotals reduces a day's sessions to work and break totals. The
// reduction is commutative: reordering the input never changes the result.
// Every layer that needs totals goes through this one function.
func ComputeDayTotals(sessions []WorkSession) DayTotals {
	var totals DayTotals
	for _, s := range sessions {
		totals.WorkMs += SessionWorkMs(s)
		totals.BreakMs += SumBreakMs(s)
	}
	return totals
}

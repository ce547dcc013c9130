package domain

import (
	"time"
)

// AttendanceRecord holds all work sessions for one (user, date) pair. The
// pairing is the natural key: exactly one record exists per user per day,
// created lazily on first clock-in. Totals are a cache over Sessions and
// are rewritten in the same transaction as every mutation.
type AttendanceRecord struct {
	ID        int64
	UserID    string
	Date      time.Time
	Sessions  []WorkSession
	Totals    DayTotals
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAttendanceRecord creates an empty record for the given user and day.
func NewAttendanceRecord(userID string, date time.Time) *AttendanceRecord {
	return &AttendanceRecord{
		UserID: userID,
		Date:   DateOf(date),
	}
}

// OpenSession returns the record's open session, or nil if every session
// is clocked out.
func (r *AttendanceRecord) OpenSession() *WorkSession {
	for i := range r.Sessions {
		if r.Sessions[i].IsOpen() {
			return &r.Sessions[i]
		}
	}
	return nil
}

// Recompute refreshes the cached totals from the current session list.
func (r *AttendanceRecord) Recompute() {
	r.Totals = ComputeDayTotals(r.Sessions)
}

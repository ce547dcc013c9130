package sqlite

import "time"

// AttendanceRecord is the stored aggregate root for one (user, date) pair.
// Totals are a cache over the session rows, rewritten in the same
// transaction as every session/break mutation. Version implements
// optimistic concurrency: every mutation bumps it and checks the expected
// value inside the transaction.
type AttendanceRecord struct {
	ID           int64
	UserID       string
	Date         string // YYYY-MM-DD
	WorkTotalMs  int64
	BreakTotalMs int64
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Sessions     []*WorkSession
}

// WorkSession is one clock-in/clock-out span owned by a record.
type WorkSession struct {
	ID       int64
	RecordID int64
	ClockIn  time.Time
	ClockOut *time.Time // NULL marks the user's open session
	Position int
	Breaks   []*Break
	Tasks    []*SessionTask
}

// Break is one break interval owned by a session.
type Break struct {
	ID        int64
	SessionID int64
	StartTime time.Time
	EndTime   *time.Time // NULL marks the open break
	Position  int
}

// SessionTask is the optional task annotation persisted alongside a session.
type SessionTask struct {
	ID        int64
	SessionID int64
	TaskName  string
	Hours     *float64
}

// OpenSession points at a user's single open session, wherever it lives.
type OpenSession struct {
	RecordID      int64
	RecordVersion int64
	UserID        string
	Date          string
	Session       *WorkSession
}

// MonthClosure marks a (user, period) as frozen against further mutation.
type MonthClosure struct {
	UserID   string
	Period   string // YYYY-MM
	ClosedAt time.Time
}

// RecordTotals carries precomputed day totals into a mutating statement.
type RecordTotals struct {
	WorkMs  int64
	BreakMs int64
}

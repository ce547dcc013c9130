package domain

import (
	"time"

	"attendance-tracker/internal/repository/sqlite"
)

// Mapper handles conversion between domain and database models. Totals are
// never copied out of the database blindly on the write path; services
// recompute them through ComputeDayTotals so presentation and storage can
// not drift apart.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// RecordFromDatabase converts a stored record with its nested sessions.
func (m *Mapper) RecordFromDatabase(dbRecord sqlite.AttendanceRecord) AttendanceRecord {
	date, _ := ParseDate(dbRecord.Date)
	return AttendanceRecord{
		ID:     dbRecord.ID,
		UserID: dbRecord.UserID,
		Date:   date,
		Totals: DayTotals{
			WorkMs:  dbRecord.WorkTotalMs,
			BreakMs: dbRecord.BreakTotalMs,
		},
		Sessions:  m.SessionsFromDatabase(dbRecord.Sessions),
		Version:   dbRecord.Version,
		CreatedAt: dbRecord.CreatedAt,
		UpdatedAt: dbRecord.UpdatedAt,
	}
}

// SessionFromDatabase converts a stored work session.
func (m *Mapper) SessionFromDatabase(dbSession sqlite.WorkSession) WorkSession {
	session := WorkSession{
		ID:      dbSession.ID,
		ClockIn: dbSession.ClockIn,
	}
	if dbSession.ClockOut != nil {
		out := *dbSession.ClockOut
		session.ClockOut = &out
	}
	for _, dbBreak := range dbSession.Breaks {
		session.Breaks = append(session.Breaks, m.BreakFromDatabase(*dbBreak))
	}
	for _, dbTask := range dbSession.Tasks {
		session.Tasks = append(session.Tasks, TaskAnnotation{
			ID:       dbTask.ID,
			TaskName: dbTask.TaskName,
			Hours:    dbTask.Hours,
		})
	}
	return session
}

// SessionsFromDatabase converts a slice of stored work sessions.
func (m *Mapper) SessionsFromDatabase(dbSessions []*sqlite.WorkSession) []WorkSession {
	if len(dbSessions) == 0 {
		return nil
	}
	sessions := make([]WorkSession, len(dbSessions))
	for i, dbSession := range dbSessions {
		sessions[i] = m.SessionFromDatabase(*dbSession)
	}
	return sessions
}

// BreakFromDatabase converts a stored break.
func (m *Mapper) BreakFromDatabase(dbBreak sqlite.Break) Break {
	brk := Break{
		ID:    dbBreak.ID,
		Start: dbBreak.StartTime,
	}
	if dbBreak.EndTime != nil {
		end := *dbBreak.EndTime
		brk.End = &end
	}
	return brk
}

// SessionToDatabase converts a domain session for storage.
func (m *Mapper) SessionToDatabase(session WorkSession, position int) *sqlite.WorkSession {
	dbSession := &sqlite.WorkSession{
		ID:       session.ID,
		ClockIn:  session.ClockIn,
		Position: position,
	}
	if session.ClockOut != nil {
		out := *session.ClockOut
		dbSession.ClockOut = &out
	}
	for i, brk := range session.Breaks {
		dbBreak := &sqlite.Break{
			StartTime: brk.Start,
			Position:  i,
		}
		if brk.End != nil {
			end := *brk.End
			dbBreak.EndTime = &end
		}
		dbSession.Breaks = append(dbSession.Breaks, dbBreak)
	}
	for _, task := range session.Tasks {
		dbSession.Tasks = append(dbSession.Tasks, &sqlite.SessionTask{
			TaskName: task.TaskName,
			Hours:    task.Hours,
		})
	}
	return dbSession
}

// SessionsToDatabase converts a slice of domain sessions for storage,
// assigning insertion positions.
func (m *Mapper) SessionsToDatabase(sessions []WorkSession) []*sqlite.WorkSession {
	dbSessions := make([]*sqlite.WorkSession, len(sessions))
	for i, session := range sessions {
		dbSessions[i] = m.SessionToDatabase(session, i)
	}
	return dbSessions
}

// TasksToDatabase converts task annotations for storage.
func (m *Mapper) TasksToDatabase(tasks []TaskAnnotation) []*sqlite.SessionTask {
	if len(tasks) == 0 {
		return nil
	}
	dbTasks := make([]*sqlite.SessionTask, len(tasks))
	for i, task := range tasks {
		dbTasks[i] = &sqlite.SessionTask{
			TaskName: task.TaskName,
			Hours:    task.Hours,
		}
	}
	return dbTasks
}

// TotalsToDatabase converts day totals into the record-store carrier.
func (m *Mapper) TotalsToDatabase(totals DayTotals) sqlite.RecordTotals {
	return sqlite.RecordTotals{
		WorkMs:  totals.WorkMs,
		BreakMs: totals.BreakMs,
	}
}

// EmptyRecord builds a zero-total record for a day with no stored data,
// used by month queries to return a complete day grid.
func (m *Mapper) EmptyRecord(userID string, date time.Time) AttendanceRecord {
	return AttendanceRecord{
		UserID: userID,
		Date:   DateOf(date),
	}
}

package sqlite

import (
	"database/sql"
)

// Scanner interface defines the common scanning behavior for both sql.Row
// and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanRecord scans an attendance record row. Timestamps are stored as
// RFC3339 strings and parsed here rather than relying on driver conversion.
func ScanRecord(scanner Scanner) (*AttendanceRecord, error) {
	record := &AttendanceRecord{}
	var createdAt, updatedAt string

	err := scanner.Scan(
		&record.ID,
		&record.UserID,
		&record.Date,
		&record.WorkTotalMs,
		&record.BreakTotalMs,
		&record.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if record.CreatedAt, err = ParseTimeFromDB(createdAt); err != nil {
		return nil, err
	}
	if record.UpdatedAt, err = ParseTimeFromDB(updatedAt); err != nil {
		return nil, err
	}

	return record, nil
}

// ScanRecords scans multiple attendance record rows
func ScanRecords(rows Rows) ([]*AttendanceRecord, error) {
	var records []*AttendanceRecord
	for rows.Next() {
		record, err := ScanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// ScanSession scans a single work session row
func ScanSession(scanner Scanner) (*WorkSession, error) {
	session := &WorkSession{}
	var clockIn string
	var clockOut sql.NullString

	err := scanner.Scan(
		&session.ID,
		&session.RecordID,
		&clockIn,
		&clockOut,
		&session.Position,
	)
	if err != nil {
		return nil, err
	}

	if session.ClockIn, err = ParseTimeFromDB(clockIn); err != nil {
		return nil, err
	}
	if clockOut.Valid {
		parsed, err := ParseTimeFromDB(clockOut.String)
		if err != nil {
			return nil, err
		}
		session.ClockOut = &parsed
	}

	return session, nil
}

// ScanSessions scans multiple work session rows
func ScanSessions(rows Rows) ([]*WorkSession, error) {
	var sessions []*WorkSession
	for rows.Next() {
		session, err := ScanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// ScanBreak scans a single break row
func ScanBreak(scanner Scanner) (*Break, error) {
	brk := &Break{}
	var startTime string
	var endTime sql.NullString

	err := scanner.Scan(
		&brk.ID,
		&brk.SessionID,
		&startTime,
		&endTime,
		&brk.Position,
	)
	if err != nil {
		return nil, err
	}

	if brk.StartTime, err = ParseTimeFromDB(startTime); err != nil {
		return nil, err
	}
	if endTime.Valid {
		parsed, err := ParseTimeFromDB(endTime.String)
		if err != nil {
			return nil, err
		}
		brk.EndTime = &parsed
	}

	return brk, nil
}

// ScanBreaks scans multiple break rows
func ScanBreaks(rows Rows) ([]*Break, error) {
	var breaks []*Break
	for rows.Next() {
		brk, err := ScanBreak(rows)
		if err != nil {
			return nil, err
		}
		breaks = append(breaks, brk)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return breaks, nil
}

// ScanSessionTask scans a single session task row
func ScanSessionTask(scanner Scanner) (*SessionTask, error) {
	task := &SessionTask{}
	var hours sql.NullFloat64

	err := scanner.Scan(
		&task.ID,
		&task.SessionID,
		&task.TaskName,
		&hours,
	)
	if err != nil {
		return nil, err
	}

	if hours.Valid {
		task.Hours = &hours.Float64
	}

	return task, nil
}

// ScanSessionTasks scans multiple session task rows
func ScanSessionTasks(rows Rows) ([]*SessionTask, error) {
	var tasks []*SessionTask
	for rows.Next() {
		task, err := ScanSessionTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"time"

	"attendance-tracker/internal/errors"
	"attendance-tracker/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the record-store interface. Every mutating method is a
// single transaction carrying the record's expected version; a failed
// version check surfaces as a StorageConflict and leaves no partial write.
type Repository interface {
	// Read operations
	GetRecord(ctx context.Context, userID, date string) (*AttendanceRecord, error)
	GetRecordRange(ctx context.Context, userID, startDate, endDate string) ([]*AttendanceRecord, error)
	FindOpenSession(ctx context.Context, userID string) (*OpenSession, error)
	IsMonthClosed(ctx context.Context, userID, period string) (bool, error)

	// Write operations
	CreateRecord(ctx context.Context, userID, date string, now time.Time) (*AttendanceRecord, error)
	AppendSession(ctx context.Context, recordID, expectedVersion int64, userID string, clockIn time.Time, tasks []*SessionTask, position int, now time.Time) (int64, error)
	CloseSession(ctx context.Context, recordID, expectedVersion, sessionID int64, clockOut time.Time, totals RecordTotals, now time.Time) error
	AppendBreak(ctx context.Context, recordID, expectedVersion, sessionID int64, start time.Time, position int, now time.Time) (int64, error)
	CloseBreak(ctx context.Context, recordID, expectedVersion, breakID int64, end time.Time, totals RecordTotals, now time.Time) error
	ReplaceSessions(ctx context.Context, recordID, expectedVersion int64, userID string, sessions []*WorkSession, totals RecordTotals, now time.Time) error
	InsertMonthClosure(ctx context.Context, userID, period string, closedAt time.Time) error

	// Utility
	Close() error
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db *sql.DB
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	// Guarded writes assume serialized transactions; a single connection
	// avoids SQLITE_BUSY surprises under the pure-Go driver.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("enable foreign keys", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// GetRecord retrieves one (user, date) record with its sessions, breaks and
// task annotations.
func (r *SQLiteRepository) GetRecord(ctx context.Context, userID, date string) (*AttendanceRecord, error) {
	query := `
	SELECT id, user_id, date, work_total_ms, break_total_ms, version, created_at, updated_at
	FROM attendance_records
	WHERE user_id = ? AND date = ?`

	record, err := QuerySingle(ctx, r.db, query, ScanRecord, "attendance record", userID+"/"+date, userID, date)
	if err != nil {
		return nil, err
	}

	if err := r.loadSessions(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// GetRecordRange retrieves all records for a user with date in
// [startDate, endDate], ordered by date.
func (r *SQLiteRepository) GetRecordRange(ctx context.Context, userID, startDate, endDate string) ([]*AttendanceRecord, error) {
	query := `
	SELECT id, user_id, date, work_total_ms, break_total_ms, version, created_at, updated_at
	FROM attendance_records
	WHERE user_id = ? AND date >= ? AND date <= ?
	ORDER BY date ASC`

	records, err := QueryMultiple(ctx, r.db, query, ScanRecords, "attendance records", userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if err := r.loadSessions(ctx, record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// FindOpenSession locates the user's open session across all days, or
// returns a NotFound error when the user is idle.
func (r *SQLiteRepository) FindOpenSession(ctx context.Context, userID string) (*OpenSession, error) {
	query := `
	SELECT ws.id, ws.record_id, ws.clock_in, ws.clock_out, ws.position,
	       ar.version, ar.user_id, ar.date
	FROM work_sessions ws
	JOIN attendance_records ar ON ar.id = ws.record_id
	WHERE ar.user_id = ? AND ws.clock_out IS NULL`

	row := r.db.QueryRowContext(ctx, query, userID)

	session := &WorkSession{}
	open := &OpenSession{}
	var clockIn string
	var clockOut sql.NullString

	err := row.Scan(
		&session.ID,
		&session.RecordID,
		&clockIn,
		&clockOut,
		&session.Position,
		&open.RecordVersion,
		&open.UserID,
		&open.Date,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("open session", userID)
	}
	if err != nil {
		return nil, HandleDatabaseError("scan open session", err)
	}

	if session.ClockIn, err = ParseTimeFromDB(clockIn); err != nil {
		return nil, HandleDatabaseError("parse clock-in", err)
	}
	if clockOut.Valid {
		parsed, perr := ParseTimeFromDB(clockOut.String)
		if perr != nil {
			return nil, HandleDatabaseError("parse clock-out", perr)
		}
		session.ClockOut = &parsed
	}

	breaks, err := r.loadBreaks(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	session.Breaks = breaks

	open.RecordID = session.RecordID
	open.Session = session
	return open, nil
}

// IsMonthClosed reports whether the (user, period) pair carries a closure marker.
func (r *SQLiteRepository) IsMonthClosed(ctx context.Context, userID, period string) (bool, error) {
	query := `SELECT COUNT(1) FROM month_closures WHERE user_id = ? AND period = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, period).Scan(&count); err != nil {
		return false, HandleDatabaseError("query month closure", err)
	}
	return count > 0, nil
}

// CreateRecord inserts an empty record for the (user, date) pair. A lost
// insert race against the unique key surfaces as a StorageConflict.
func (r *SQLiteRepository) CreateRecord(ctx context.Context, userID, date string, now time.Time) (*AttendanceRecord, error) {
	query := `
	INSERT INTO attendance_records (user_id, date, work_total_ms, break_total_ms, version, created_at, updated_at)
	VALUES (?, ?, 0, 0, 1, ?, ?)`

	stamp := FormatTimeForDB(now)
	result, err := r.db.ExecContext(ctx, query, userID, date, stamp, stamp)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, errors.NewStorageConflictError("create attendance record").
				WithContext("user_id", userID).
				WithContext("date", date)
		}
		return nil, HandleDatabaseError("insert attendance record", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, HandleDatabaseError("get last insert ID", err)
	}

	return &AttendanceRecord{
		ID:        id,
		UserID:    userID,
		Date:      date,
		Version:   1,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// AppendSession inserts an open session for a clock-in. The insert is
// guarded by "no open session exists anywhere for this user", re-checking
// the state machine precondition inside the transaction; a concurrent
// clock-in that won the race surfaces as AlreadyClockedIn.
func (r *SQLiteRepository) AppendSession(ctx context.Context, recordID, expectedVersion int64, userID string, clockIn time.Time, tasks []*SessionTask, position int, now time.Time) (int64, error) {
	var sessionID int64

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		insert := `
		INSERT INTO work_sessions (record_id, clock_in, clock_out, position)
		SELECT ?, ?, NULL, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM work_sessions ws
			JOIN attendance_records ar ON ar.id = ws.record_id
			WHERE ar.user_id = ? AND ws.clock_out IS NULL
		)`

		result, err := tx.ExecContext(ctx, insert, recordID, FormatTimeForDB(clockIn), position, userID)
		if err != nil {
			return HandleDatabaseError("insert work session", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return HandleDatabaseError("get rows affected", err)
		}
		if rows == 0 {
			return errors.NewAlreadyClockedInError(userID)
		}
		if sessionID, err = result.LastInsertId(); err != nil {
			return HandleDatabaseError("get last insert ID", err)
		}

		for _, task := range tasks {
			taskInsert := `INSERT INTO session_tasks (session_id, task_name, hours) VALUES (?, ?, ?)`
			if _, err := tx.ExecContext(ctx, taskInsert, sessionID, task.TaskName, FormatFloatPtrForDB(task.Hours)); err != nil {
				return HandleDatabaseError("insert session task", err)
			}
		}

		return r.bumpVersion(ctx, tx, recordID, expectedVersion, nil, now, "append session")
	})
	if err != nil {
		return 0, err
	}
	return sessionID, nil
}

// CloseSession sets the clock-out time on an open session and rewrites the
// record's cached totals in the same transaction. The update is guarded by
// "session still open and no open break on it".
func (r *SQLiteRepository) CloseSession(ctx context.Context, recordID, expectedVersion, sessionID int64, clockOut time.Time, totals RecordTotals, now time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		update := `
		UPDATE work_sessions SET clock_out = ?
		WHERE id = ? AND clock_out IS NULL
		  AND NOT EXISTS (SELECT 1 FROM breaks WHERE session_id = ? AND end_time IS NULL)`

		rows, err := ExecuteCountingRows(ctx, tx, update, FormatTimeForDB(clockOut), sessionID, sessionID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.NewStorageConflictError("close session").
				WithContext("session_id", sessionID)
		}

		return r.bumpVersion(ctx, tx, recordID, expectedVersion, &totals, now, "close session")
	})
}

// AppendBreak inserts an open break on a session, guarded by "session still
// open and no open break on it".
func (r *SQLiteRepository) AppendBreak(ctx context.Context, recordID, expectedVersion, sessionID int64, start time.Time, position int, now time.Time) (int64, error) {
	var breakID int64

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		insert := `
		INSERT INTO breaks (session_id, start_time, end_time, position)
		SELECT ?, ?, NULL, ?
		WHERE EXISTS (SELECT 1 FROM work_sessions WHERE id = ? AND clock_out IS NULL)
		  AND NOT EXISTS (SELECT 1 FROM breaks WHERE session_id = ? AND end_time IS NULL)`

		result, err := tx.ExecContext(ctx, insert, sessionID, FormatTimeForDB(start), position, sessionID, sessionID)
		if err != nil {
			return HandleDatabaseError("insert break", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return HandleDatabaseError("get rows affected", err)
		}
		if rows == 0 {
			return errors.NewStorageConflictError("append break").
				WithContext("session_id", sessionID)
		}
		if breakID, err = result.LastInsertId(); err != nil {
			return HandleDatabaseError("get last insert ID", err)
		}

		return r.bumpVersion(ctx, tx, recordID, expectedVersion, nil, now, "append break")
	})
	if err != nil {
		return 0, err
	}
	return breakID, nil
}

// CloseBreak sets the end time on an open break and rewrites the record's
// cached totals in the same transaction.
func (r *SQLiteRepository) CloseBreak(ctx context.Context, recordID, expectedVersion, breakID int64, end time.Time, totals RecordTotals, now time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		update := `UPDATE breaks SET end_time = ? WHERE id = ? AND end_time IS NULL`

		rows, err := ExecuteCountingRows(ctx, tx, update, FormatTimeForDB(end), breakID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.NewStorageConflictError("close break").
				WithContext("break_id", breakID)
		}

		return r.bumpVersion(ctx, tx, recordID, expectedVersion, &totals, now, "close break")
	})
}

// ReplaceSessions atomically swaps the record's whole session set for the
// supplied one and rewrites the cached totals. The version check runs first
// so a concurrent mutation aborts the transaction before any delete. An
// open session in the replacement set is inserted under the same "no open
// session anywhere for this user" guard as AppendSession; the day's own
// rows are already gone at that point, so the guard sees only other days.
func (r *SQLiteRepository) ReplaceSessions(ctx context.Context, recordID, expectedVersion int64, userID string, sessions []*WorkSession, totals RecordTotals, now time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.bumpVersion(ctx, tx, recordID, expectedVersion, &totals, now, "replace sessions"); err != nil {
			return err
		}

		deletes := []string{
			`DELETE FROM breaks WHERE session_id IN (SELECT id FROM work_sessions WHERE record_id = ?)`,
			`DELETE FROM session_tasks WHERE session_id IN (SELECT id FROM work_sessions WHERE record_id = ?)`,
			`DELETE FROM work_sessions WHERE record_id = ?`,
		}
		for _, del := range deletes {
			if _, err := tx.ExecContext(ctx, del, recordID); err != nil {
				return HandleDatabaseError("delete day rows", err)
			}
		}

		for i, session := range sessions {
			var sessionID int64
			var err error

			if session.ClockOut == nil {
				guardedInsert := `
				INSERT INTO work_sessions (record_id, clock_in, clock_out, position)
				SELECT ?, ?, NULL, ?
				WHERE NOT EXISTS (
					SELECT 1 FROM work_sessions ws
					JOIN attendance_records ar ON ar.id = ws.record_id
					WHERE ar.user_id = ? AND ws.clock_out IS NULL
				)`

				result, execErr := tx.ExecContext(ctx, guardedInsert,
					recordID, FormatTimeForDB(session.ClockIn), i, userID)
				if execErr != nil {
					return HandleDatabaseError("insert work session", execErr)
				}
				rows, execErr := result.RowsAffected()
				if execErr != nil {
					return HandleDatabaseError("get rows affected", execErr)
				}
				if rows == 0 {
					return errors.NewAlreadyClockedInError(userID)
				}
				if sessionID, err = result.LastInsertId(); err != nil {
					return HandleDatabaseError("get last insert ID", err)
				}
			} else {
				sessionInsert := `INSERT INTO work_sessions (record_id, clock_in, clock_out, position) VALUES (?, ?, ?, ?)`
				sessionID, err = ExecuteWithLastInsertID(ctx, tx, sessionInsert,
					recordID, FormatTimeForDB(session.ClockIn), FormatTimePtrForDB(session.ClockOut), i)
				if err != nil {
					return err
				}
			}

			for j, brk := range session.Breaks {
				breakInsert := `INSERT INTO breaks (session_id, start_time, end_time, position) VALUES (?, ?, ?, ?)`
				if _, err := tx.ExecContext(ctx, breakInsert,
					sessionID, FormatTimeForDB(brk.StartTime), FormatTimePtrForDB(brk.EndTime), j); err != nil {
					return HandleDatabaseError("insert break", err)
				}
			}

			for _, task := range session.Tasks {
				taskInsert := `INSERT INTO session_tasks (session_id, task_name, hours) VALUES (?, ?, ?)`
				if _, err := tx.ExecContext(ctx, taskInsert,
					sessionID, task.TaskName, FormatFloatPtrForDB(task.Hours)); err != nil {
					return HandleDatabaseError("insert session task", err)
				}
			}
		}

		return nil
	})
}

// InsertMonthClosure marks a (user, period) as closed. Closing an already
// closed month is a no-op, which makes the operation idempotent.
func (r *SQLiteRepository) InsertMonthClosure(ctx context.Context, userID, period string, closedAt time.Time) error {
	query := `INSERT OR IGNORE INTO month_closures (user_id, period, closed_at) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, userID, period, FormatTimeForDB(closedAt)); err != nil {
		return HandleDatabaseError("insert month closure", err)
	}
	return nil
}

// bumpVersion performs the optimistic concurrency check: advance the record
// version (and optionally the cached totals) only if the caller saw the
// current one. Zero rows affected means another writer got there first.
func (r *SQLiteRepository) bumpVersion(ctx context.Context, tx *sql.Tx, recordID, expectedVersion int64, totals *RecordTotals, now time.Time, operation string) error {
	var rows int64
	var err error

	if totals != nil {
		update := `
		UPDATE attendance_records
		SET work_total_ms = ?, break_total_ms = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
		rows, err = ExecuteCountingRows(ctx, tx, update, totals.WorkMs, totals.BreakMs, FormatTimeForDB(now), recordID, expectedVersion)
	} else {
		update := `
		UPDATE attendance_records
		SET version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
		rows, err = ExecuteCountingRows(ctx, tx, update, FormatTimeForDB(now), recordID, expectedVersion)
	}
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NewStorageConflictError(operation).
			WithContext("record_id", recordID).
			WithContext("expected_version", expectedVersion)
	}
	return nil
}

func (r *SQLiteRepository) loadSessions(ctx context.Context, record *AttendanceRecord) error {
	query := `
	SELECT id, record_id, clock_in, clock_out, position
	FROM work_sessions
	WHERE record_id = ?
	ORDER BY position ASC, id ASC`

	sessions, err := QueryMultiple(ctx, r.db, query, ScanSessions, "work sessions", record.ID)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		breaks, err := r.loadBreaks(ctx, session.ID)
		if err != nil {
			return err
		}
		session.Breaks = breaks

		tasks, err := r.loadTasks(ctx, session.ID)
		if err != nil {
			return err
		}
		session.Tasks = tasks
	}

	record.Sessions = sessions
	return nil
}

func (r *SQLiteRepository) loadBreaks(ctx context.Context, sessionID int64) ([]*Break, error) {
	query := `
	SELECT id, session_id, start_time, end_time, position
	FROM breaks
	WHERE session_id = ?
	ORDER BY position ASC, id ASC`

	return QueryMultiple(ctx, r.db, query, ScanBreaks, "breaks", sessionID)
}

func (r *SQLiteRepository) loadTasks(ctx context.Context, sessionID int64) ([]*SessionTask, error) {
	query := `
	SELECT id, session_id, task_name, hours
	FROM session_tasks
	WHERE session_id = ?
	ORDER BY id ASC`

	return QueryMultiple(ctx, r.db, query, ScanSessionTasks, "session tasks", sessionID)
}

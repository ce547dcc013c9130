package services

import (
	"context"
	"sort"
	"time"

	"attendance-tracker/internal/errors"
	"attendance-tracker/internal/repository/sqlite"
)

// mockRepository is an in-memory Repository that mirrors the guarded-write
// semantics of the SQLite implementation: version checks, the user-wide
// open-session guard and idempotent closures.
type mockRepository struct {
	records  map[int64]*sqlite.AttendanceRecord
	byKey    map[string]int64 // userID|date -> record ID
	closures map[string]bool  // userID|period
	nextID   int64

	createCalls int
	rangeCalls  int
	failWith    error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		records:  make(map[int64]*sqlite.AttendanceRecord),
		byKey:    make(map[string]int64),
		closures: make(map[string]bool),
	}
}

func (m *mockRepository) key(userID, date string) string { return userID + "|" + date }

func (m *mockRepository) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockRepository) GetRecord(ctx context.Context, userID, date string) (*sqlite.AttendanceRecord, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	id, ok := m.byKey[m.key(userID, date)]
	if !ok {
		return nil, errors.NewNotFoundError("attendance record", userID+"/"+date)
	}
	return m.records[id], nil
}

func (m *mockRepository) GetRecordRange(ctx context.Context, userID, startDate, endDate string) ([]*sqlite.AttendanceRecord, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.rangeCalls++

	var out []*sqlite.AttendanceRecord
	for _, record := range m.records {
		if record.UserID == userID && record.Date >= startDate && record.Date <= endDate {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *mockRepository) FindOpenSession(ctx context.Context, userID string) (*sqlite.OpenSession, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, record := range m.records {
		if record.UserID != userID {
			continue
		}
		for _, session := range record.Sessions {
			if session.ClockOut == nil {
				return &sqlite.OpenSession{
					RecordID:      record.ID,
					RecordVersion: record.Version,
					UserID:        record.UserID,
					Date:          record.Date,
					Session:       session,
				}, nil
			}
		}
	}
	return nil, errors.NewNotFoundError("open session", userID)
}

func (m *mockRepository) IsMonthClosed(ctx context.Context, userID, period string) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	return m.closures[m.key(userID, period)], nil
}

func (m *mockRepository) CreateRecord(ctx context.Context, userID, date string, now time.Time) (*sqlite.AttendanceRecord, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.createCalls++

	key := m.key(userID, date)
	if _, exists := m.byKey[key]; exists {
		return nil, errors.NewStorageConflictError("create attendance record")
	}

	record := &sqlite.AttendanceRecord{
		ID:        m.id(),
		UserID:    userID,
		Date:      date,
		Version:   1,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	m.records[record.ID] = record
	m.byKey[key] = record.ID
	return record, nil
}

func (m *mockRepository) AppendSession(ctx context.Context, recordID, expectedVersion int64, userID string, clockIn time.Time, tasks []*sqlite.SessionTask, position int, now time.Time) (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	for _, record := range m.records {
		if record.UserID != userID {
			continue
		}
		for _, session := range record.Sessions {
			if session.ClockOut == nil {
				return 0, errors.NewAlreadyClockedInError(userID)
			}
		}
	}

	record, err := m.checkVersion(recordID, expectedVersion, "append session")
	if err != nil {
		return 0, err
	}

	session := &sqlite.WorkSession{
		ID:       m.id(),
		RecordID: recordID,
		ClockIn:  clockIn,
		Position: position,
		Tasks:    tasks,
	}
	record.Sessions = append(record.Sessions, session)
	record.Version++
	return session.ID, nil
}

func (m *mockRepository) CloseSession(ctx context.Context, recordID, expectedVersion, sessionID int64, clockOut time.Time, totals sqlite.RecordTotals, now time.Time) error {
	if m.failWith != nil {
		return m.failWith
	}
	record, err := m.checkVersion(recordID, expectedVersion, "close session")
	if err != nil {
		return err
	}

	for _, session := range record.Sessions {
		if session.ID != sessionID || session.ClockOut != nil {
			continue
		}
		for _, brk := range session.Breaks {
			if brk.EndTime == nil {
				return errors.NewStorageConflictError("close session")
			}
		}
		out := clockOut
		session.ClockOut = &out
		record.WorkTotalMs = totals.WorkMs
		record.BreakTotalMs = totals.BreakMs
		record.Version++
		return nil
	}
	return errors.NewStorageConflictError("close session")
}

func (m *mockRepository) AppendBreak(ctx context.Context, recordID, expectedVersion, sessionID int64, start time.Time, position int, now time.Time) (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	record, err := m.checkVersion(recordID, expectedVersion, "append break")
	if err != nil {
		return 0, err
	}

	for _, session := range record.Sessions {
		if session.ID != sessionID || session.ClockOut != nil {
			continue
		}
		for _, brk := range session.Breaks {
			if brk.EndTime == nil {
				return 0, errors.NewStorageConflictError("append break")
			}
		}
		brk := &sqlite.Break{
			ID:        m.id(),
			SessionID: sessionID,
			StartTime: start,
			Position:  position,
		}
		session.Breaks = append(session.Breaks, brk)
		record.Version++
		return brk.ID, nil
	}
	return 0, errors.NewStorageConflictError("append break")
}

func (m *mockRepository) CloseBreak(ctx context.Context, recordID, expectedVersion, breakID int64, end time.Time, totals sqlite.RecordTotals, now time.Time) error {
	if m.failWith != nil {
		return m.failWith
	}
	record, err := m.checkVersion(recordID, expectedVersion, "close break")
	if err != nil {
		return err
	}

	for _, session := range record.Sessions {
		for _, brk := range session.Breaks {
			if brk.ID == breakID && brk.EndTime == nil {
				endTime := end
				brk.EndTime = &endTime
				record.WorkTotalMs = totals.WorkMs
				record.BreakTotalMs = totals.BreakMs
				record.Version++
				return nil
			}
		}
	}
	return errors.NewStorageConflictError("close break")
}

func (m *mockRepository) ReplaceSessions(ctx context.Context, recordID, expectedVersion int64, userID string, sessions []*sqlite.WorkSession, totals sqlite.RecordTotals, now time.Time) error {
	if m.failWith != nil {
		return m.failWith
	}
	record, err := m.checkVersion(recordID, expectedVersion, "replace sessions")
	if err != nil {
		return err
	}

	for _, session := range sessions {
		if session.ClockOut != nil {
			continue
		}
		for _, other := range m.records {
			if other.ID == recordID || other.UserID != userID {
				continue
			}
			for _, existing := range other.Sessions {
				if existing.ClockOut == nil {
					return errors.NewAlreadyClockedInError(userID)
				}
			}
		}
	}

	for _, session := range sessions {
		if session.ID == 0 {
			session.ID = m.id()
		}
		session.RecordID = recordID
	}
	record.Sessions = sessions
	record.WorkTotalMs = totals.WorkMs
	record.BreakTotalMs = totals.BreakMs
	record.Version++
	return nil
}

func (m *mockRepository) InsertMonthClosure(ctx context.Context, userID, period string, closedAt time.Time) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.closures[m.key(userID, period)] = true
	return nil
}

func (m *mockRepository) Close() error { return nil }

func (m *mockRepository) checkVersion(recordID, expectedVersion int64, operation string) (*sqlite.AttendanceRecord, error) {
	record, ok := m.records[recordID]
	if !ok || record.Version != expectedVersion {
		return nil, errors.NewStorageConflictError(operation)
	}
	return record, nil
}

// mockNotifier records delivered events and optionally fails every delivery.
type mockNotifier struct {
	events []ClockEvent
	err    error
}

func (m *mockNotifier) Notify(ctx context.Context, event ClockEvent) error {
	m.events = append(m.events, event)
	return m.err
}

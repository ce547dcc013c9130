package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errors"
	"attendance-tracker/internal/logging"
	"attendance-tracker/internal/repository/sqlite"
	"attendance-tracker/internal/validation"
)

// ClockServiceImpl implements the clock event state machine. The user's
// state is never stored: it is derived from the presence of an open session
// (and an open break on it), and the repository re-checks each transition's
// precondition inside the write transaction.
type ClockServiceImpl struct {
	repo      sqlite.Repository
	mapper    *domain.Mapper
	validator *validation.SessionValidator
	notifier  Notifier
	logger    logging.Logger
	now       func() time.Time
}

// NewClockService creates a new clock service instance.
func NewClockService(repo sqlite.Repository, mapper *domain.Mapper, validator *validation.SessionValidator, notifier Notifier, logger logging.Logger) *ClockServiceImpl {
	return &ClockServiceImpl{
		repo:      repo,
		mapper:    mapper,
		validator: validator,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Clock applies one clock event for the user and returns the resulting state.
func (s *ClockServiceImpl) Clock(ctx context.Context, req ClockRequest) (domain.ClockState, error) {
	if req.UserID == "" {
		return "", errors.NewValidationError("user ID is required", nil)
	}
	if !req.Action.IsValid() {
		return "", errors.NewValidationError(fmt.Sprintf("unknown clock action: %s", req.Action), nil)
	}
	if err := s.validator.ValidateTasks(req.Tasks); err != nil {
		return "", err
	}

	ts := s.now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	open, err := s.findOpen(ctx, req.UserID)
	if err != nil {
		return "", err
	}

	var state domain.ClockState
	switch req.Action {
	case ActionClockIn:
		state, err = s.clockIn(ctx, req, open, ts)
	case ActionClockOut:
		state, err = s.clockOut(ctx, req.UserID, open, ts)
	case ActionBreakStart:
		state, err = s.breakStart(ctx, req.UserID, open, ts)
	case ActionBreakEnd:
		state, err = s.breakEnd(ctx, req.UserID, open, ts)
	}
	if err != nil {
		return "", err
	}

	if req.Action == ActionClockIn || req.Action == ActionClockOut {
		s.notify(ctx, ClockEvent{
			ID:        uuid.NewString(),
			UserID:    req.UserID,
			Action:    req.Action,
			Timestamp: ts,
			State:     state,
		})
	}

	return state, nil
}

// CurrentState derives the user's clock state from stored rows.
func (s *ClockServiceImpl) CurrentState(ctx context.Context, userID string) (domain.ClockState, error) {
	if userID == "" {
		return "", errors.NewValidationError("user ID is required", nil)
	}

	open, err := s.findOpen(ctx, userID)
	if err != nil {
		return "", err
	}
	if open == nil {
		return domain.StateIdle, nil
	}

	session := s.mapper.SessionFromDatabase(*open.Session)
	return domain.DeriveClockState(&session), nil
}

func (s *ClockServiceImpl) clockIn(ctx context.Context, req ClockRequest, open *sqlite.OpenSession, ts time.Time) (domain.ClockState, error) {
	if open != nil {
		return "", errors.NewAlreadyClockedInError(req.UserID)
	}

	date := domain.FormatDate(ts)
	if err := s.guardMonthOpen(ctx, req.UserID, domain.PeriodOf(ts)); err != nil {
		return "", err
	}

	record, err := s.repo.GetRecord(ctx, req.UserID, date)
	if errors.IsKind(err, errors.KindNotFound) {
		record, err = s.repo.CreateRecord(ctx, req.UserID, date, s.now())
	}
	if err != nil {
		return "", err
	}

	_, err = s.repo.AppendSession(ctx, record.ID, record.Version, req.UserID,
		ts, s.mapper.TasksToDatabase(req.Tasks), len(record.Sessions), s.now())
	if err != nil {
		return "", err
	}

	s.logger.Infof("user %s clocked in at %s", req.UserID, ts.Format(time.RFC3339))
	return domain.StateClockedIn, nil
}

func (s *ClockServiceImpl) clockOut(ctx context.Context, userID string, open *sqlite.OpenSession, ts time.Time) (domain.ClockState, error) {
	if open == nil {
		return "", errors.NewNoOpenSessionError(userID)
	}

	session := s.mapper.SessionFromDatabase(*open.Session)
	if session.HasOpenBreak() {
		return "", errors.NewOpenBreakMustEndFirstError(userID)
	}
	if _, err := domain.DurationMs(session.ClockIn, ts); err != nil {
		return "", err
	}
	for _, brk := range session.Breaks {
		if brk.End == nil {
			continue
		}
		if _, err := domain.DurationMs(*brk.End, ts); err != nil {
			return "", err
		}
	}
	if err := s.guardMonthOpen(ctx, userID, domain.PeriodOf(session.ClockIn)); err != nil {
		return "", err
	}

	totals, err := s.recomputeTotals(ctx, open, func(day []domain.WorkSession) {
		for i := range day {
			if day[i].ID == session.ID {
				out := ts
				day[i].ClockOut = &out
			}
		}
	})
	if err != nil {
		return "", err
	}

	if err := s.repo.CloseSession(ctx, open.RecordID, open.RecordVersion, session.ID, ts, totals, s.now()); err != nil {
		return "", err
	}

	s.logger.Infof("user %s clocked out at %s", userID, ts.Format(time.RFC3339))
	return domain.StateIdle, nil
}

func (s *ClockServiceImpl) breakStart(ctx context.Context, userID string, open *sqlite.OpenSession, ts time.Time) (domain.ClockState, error) {
	if open == nil {
		return "", errors.NewNoOpenSessionError(userID)
	}

	session := s.mapper.SessionFromDatabase(*open.Session)
	if session.HasOpenBreak() {
		return "", errors.NewAlreadyOnBreakError(userID)
	}
	if _, err := domain.DurationMs(session.ClockIn, ts); err != nil {
		return "", err
	}
	if last := lastClosedBreak(session); last != nil && ts.Before(*last.End) {
		return "", errors.NewOverlappingBreakError(
			fmt.Sprintf("break start %s falls inside the previous break", ts.Format(time.RFC3339)))
	}
	if err := s.guardMonthOpen(ctx, userID, domain.PeriodOf(session.ClockIn)); err != nil {
		return "", err
	}

	_, err := s.repo.AppendBreak(ctx, open.RecordID, open.RecordVersion, session.ID, ts, len(session.Breaks), s.now())
	if err != nil {
		return "", err
	}

	s.logger.Debugf("user %s started a break at %s", userID, ts.Format(time.RFC3339))
	return domain.StateOnBreak, nil
}

func (s *ClockServiceImpl) breakEnd(ctx context.Context, userID string, open *sqlite.OpenSession, ts time.Time) (domain.ClockState, error) {
	if open == nil {
		return "", errors.NewNoOpenBreakError(userID)
	}

	session := s.mapper.SessionFromDatabase(*open.Session)
	openBreak := session.OpenBreak()
	if openBreak == nil {
		return "", errors.NewNoOpenBreakError(userID)
	}
	if _, err := domain.DurationMs(openBreak.Start, ts); err != nil {
		return "", err
	}
	if err := s.guardMonthOpen(ctx, userID, domain.PeriodOf(session.ClockIn)); err != nil {
		return "", err
	}

	totals, err := s.recomputeTotals(ctx, open, func(day []domain.WorkSession) {
		for i := range day {
			for j := range day[i].Breaks {
				if day[i].Breaks[j].ID == openBreak.ID {
					end := ts
					day[i].Breaks[j].End = &end
				}
			}
		}
	})
	if err != nil {
		return "", err
	}

	if err := s.repo.CloseBreak(ctx, open.RecordID, open.RecordVersion, openBreak.ID, ts, totals, s.now()); err != nil {
		return "", err
	}

	s.logger.Debugf("user %s ended a break at %s", userID, ts.Format(time.RFC3339))
	return domain.StateClockedIn, nil
}

// findOpen normalizes the repository's NotFound into a nil open session.
func (s *ClockServiceImpl) findOpen(ctx context.Context, userID string) (*sqlite.OpenSession, error) {
	open, err := s.repo.FindOpenSession(ctx, userID)
	if errors.IsKind(err, errors.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return open, nil
}

func (s *ClockServiceImpl) guardMonthOpen(ctx context.Context, userID string, period domain.MonthPeriod) error {
	closed, err := s.repo.IsMonthClosed(ctx, userID, period.String())
	if err != nil {
		return err
	}
	if closed {
		return errors.NewMonthClosedError(userID, period.String())
	}
	return nil
}

// recomputeTotals loads the open session's day, applies the pending change
// and reduces the day to totals, so the cached columns written by the
// repository already reflect the transition.
func (s *ClockServiceImpl) recomputeTotals(ctx context.Context, open *sqlite.OpenSession, apply func(day []domain.WorkSession)) (sqlite.RecordTotals, error) {
	record, err := s.repo.GetRecord(ctx, open.UserID, open.Date)
	if err != nil {
		return sqlite.RecordTotals{}, err
	}

	day := s.mapper.SessionsFromDatabase(record.Sessions)
	apply(day)
	return s.mapper.TotalsToDatabase(domain.ComputeDayTotals(day)), nil
}

// notify hands the event to the side channel. Delivery failures are logged
// and swallowed so a completed transition is never reported as failed.
func (s *ClockServiceImpl) notify(ctx context.Context, event ClockEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warnf("clock event notification failed for user %s: %v", event.UserID, err)
	}
}

func lastClosedBreak(session domain.WorkSession) *domain.Break {
	for i := len(session.Breaks) - 1; i >= 0; i-- {
		if session.Breaks[i].End != nil {
			return &session.Breaks[i]
		}
	}
	return nil
}

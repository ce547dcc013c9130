package services

import (
	"context"
	"time"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errors"
	"attendance-tracker/internal/logging"
	"attendance-tracker/internal/repository/sqlite"
	"attendance-tracker/internal/validation"
)

// EditServiceImpl reconciles administrative full-day edits. An edit never
// patches individual sessions: the caller supplies the complete replacement
// set for the day and the old set is swapped out in one transaction.
type EditServiceImpl struct {
	repo      sqlite.Repository
	mapper    *domain.Mapper
	validator *validation.SessionValidator
	logger    logging.Logger
	now       func() time.Time
}

// NewEditService creates a new edit service instance.
func NewEditService(repo sqlite.Repository, mapper *domain.Mapper, validator *validation.SessionValidator, logger logging.Logger) *EditServiceImpl {
	return &EditServiceImpl{
		repo:      repo,
		mapper:    mapper,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// ReplaceDay validates the replacement set and swaps it in atomically.
// Validation is ordered and fail-fast: per-session interval checks first,
// then cross-session overlap, then the month closure guard; the first
// failure aborts with nothing written.
func (s *EditServiceImpl) ReplaceDay(ctx context.Context, userID string, date time.Time, sessions []domain.WorkSession) error {
	if userID == "" {
		return errors.NewValidationError("user ID is required", nil)
	}

	now := s.now()
	if err := s.validator.ValidateDay(sessions, now); err != nil {
		return err
	}
	for _, session := range sessions {
		if err := s.validator.ValidateTasks(session.Tasks); err != nil {
			return err
		}
	}

	day := domain.DateOf(date)
	for _, session := range sessions {
		if !domain.DateOf(session.ClockIn).Equal(day) {
			return errors.NewValidationError("session clock-in falls outside the edited day", nil)
		}
	}

	// An open session in the replacement set claims the user's single
	// open-session slot, so another day must not already hold it. The
	// repository re-checks this inside the replace transaction.
	if hasOpenSession(sessions) {
		open, err := s.repo.FindOpenSession(ctx, userID)
		if err != nil && !errors.IsKind(err, errors.KindNotFound) {
			return err
		}
		if open != nil && open.Date != domain.FormatDate(day) {
			return errors.NewAlreadyClockedInError(userID).
				WithContext("open_session_date", open.Date)
		}
	}

	period := domain.PeriodOf(day)
	closed, err := s.repo.IsMonthClosed(ctx, userID, period.String())
	if err != nil {
		return err
	}
	if closed {
		return errors.NewMonthClosedError(userID, period.String())
	}

	record, err := s.repo.GetRecord(ctx, userID, domain.FormatDate(day))
	if err != nil {
		return err
	}

	totals := s.mapper.TotalsToDatabase(domain.ComputeDayTotals(sessions))
	if err := s.repo.ReplaceSessions(ctx, record.ID, record.Version, userID,
		s.mapper.SessionsToDatabase(sessions), totals, now); err != nil {
		return err
	}

	s.logger.Infof("replaced day %s for user %s with %d sessions", domain.FormatDate(day), userID, len(sessions))
	return nil
}

func hasOpenSession(sessions []domain.WorkSession) bool {
	for _, session := range sessions {
		if session.IsOpen() {
			return true
		}
	}
	return false
}

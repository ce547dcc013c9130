package services

import (
	"context"
	"time"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errors"
	"attendance-tracker/internal/logging"
	"attendance-tracker/internal/repository/sqlite"
)

// ClosureServiceImpl manages month closure markers. Closure is one-way:
// there is no reopen operation, and a closed month rejects both edits and
// live clock actions.
type ClosureServiceImpl struct {
	repo   sqlite.Repository
	logger logging.Logger
	now    func() time.Time
}

// NewClosureService creates a new closure service instance.
func NewClosureService(repo sqlite.Repository, logger logging.Logger) *ClosureServiceImpl {
	return &ClosureServiceImpl{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// CloseMonth freezes the (user, period) pair. Closing an already-closed
// month succeeds without changing anything.
func (s *ClosureServiceImpl) CloseMonth(ctx context.Context, userID string, periodText string) error {
	if userID == "" {
		return errors.NewValidationError("user ID is required", nil)
	}

	period, err := domain.ParsePeriod(periodText)
	if err != nil {
		return err
	}

	if err := s.repo.InsertMonthClosure(ctx, userID, period.String(), s.now()); err != nil {
		return err
	}

	s.logger.Infof("closed month %s for user %s", period.String(), userID)
	return nil
}

// IsClosed reports whether the (user, period) pair is closed.
func (s *ClosureServiceImpl) IsClosed(ctx context.Context, userID string, periodText string) (bool, error) {
	if userID == "" {
		return false, errors.NewValidationError("user ID is required", nil)
	}

	period, err := domain.ParsePeriod(periodText)
	if err != nil {
		return false, err
	}

	return s.repo.IsMonthClosed(ctx, userID, period.String())
}

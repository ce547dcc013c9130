package api

import (
	"context"
	"time"

	"attendance-tracker/internal/config"
	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/logging"
	"attendance-tracker/internal/repository/sqlite"
	"attendance-tracker/internal/services"
	"attendance-tracker/internal/validation"
)

// API is the single entry point the transport layers talk to. It wires the
// services over one repository and keeps the read cache honest: every
// committed mutation invalidates the user's cached months.
type API struct {
	clock   services.ClockService
	edits   services.EditService
	reports services.ReportService
	closure services.ClosureService
}

// New wires the full service stack over the given repository. A nil
// notifier disables the clock event side channel.
func New(repo sqlite.Repository, notifier services.Notifier, logger logging.Logger, cfg *config.Config) *API {
	mapper := domain.NewMapper()
	validator := validation.NewSessionValidatorWithBase(validation.NewValidatorWithConfig(cfg))
	cache := services.NewReportCache(cfg.Report.CacheTTL)

	return &API{
		clock:   services.NewClockService(repo, mapper, validator, notifier, logger),
		edits:   services.NewEditService(repo, mapper, validator, logger),
		reports: services.NewReportService(repo, mapper, cache, logger),
		closure: services.NewClosureService(repo, logger),
	}
}

// Clock applies one clock event and returns the user's new state.
func (a *API) Clock(ctx context.Context, req services.ClockRequest) (domain.ClockState, error) {
	state, err := a.clock.Clock(ctx, req)
	if err != nil {
		return "", err
	}
	a.reports.InvalidateUser(req.UserID)
	return state, nil
}

// CurrentState derives the user's clock state.
func (a *API) CurrentState(ctx context.Context, userID string) (domain.ClockState, error) {
	return a.clock.CurrentState(ctx, userID)
}

// GetDay returns the record for (user, date), or nil when none exists.
func (a *API) GetDay(ctx context.Context, userID string, date time.Time) (*domain.AttendanceRecord, error) {
	return a.reports.GetDay(ctx, userID, date)
}

// GetMonth returns the full day grid for the period.
func (a *API) GetMonth(ctx context.Context, userID, period string) ([]domain.AttendanceRecord, error) {
	return a.reports.GetMonth(ctx, userID, period)
}

// ReplaceDay swaps the whole session set for (user, date).
func (a *API) ReplaceDay(ctx context.Context, userID string, date time.Time, sessions []domain.WorkSession) error {
	if err := a.edits.ReplaceDay(ctx, userID, date, sessions); err != nil {
		return err
	}
	a.reports.InvalidateUser(userID)
	return nil
}

// CloseMonth freezes the (user, period) pair against edits and clock actions.
func (a *API) CloseMonth(ctx context.Context, userID, period string) error {
	if err := a.closure.CloseMonth(ctx, userID, period); err != nil {
		return err
	}
	a.reports.InvalidateUser(userID)
	return nil
}

// IsMonthClosed reports whether the (user, period) pair is closed.
func (a *API) IsMonthClosed(ctx context.Context, userID, period string) (bool, error) {
	return a.closure.IsClosed(ctx, userID, period)
}

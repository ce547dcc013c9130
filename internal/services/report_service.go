package services

import (
	"context"
	"time"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errors"
	"attendance-tracker/internal/logging"
	"attendance-tracker/internal/repository/sqlite"
)

// ReportServiceImpl serves the read side. Reads never take the write path's
// transactional guards: they see the last committed state of each record,
// and month results are cached for a short TTL.
type ReportServiceImpl struct {
	repo   sqlite.Repository
	mapper *domain.Mapper
	cache  *ReportCache
	logger logging.Logger
}

// NewReportService creates a new report service instance. A nil cache
// disables month-result caching.
func NewReportService(repo sqlite.Repository, mapper *domain.Mapper, cache *ReportCache, logger logging.Logger) *ReportServiceImpl {
	return &ReportServiceImpl{
		repo:   repo,
		mapper: mapper,
		cache:  cache,
		logger: logger,
	}
}

// GetDay returns the record for (user, date). A day with no stored data
// returns (nil, nil): absence is not an error on the read side.
func (s *ReportServiceImpl) GetDay(ctx context.Context, userID string, date time.Time) (*domain.AttendanceRecord, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user ID is required", nil)
	}

	dbRecord, err := s.repo.GetRecord(ctx, userID, domain.FormatDate(date))
	if errors.IsKind(err, errors.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	record := s.mapper.RecordFromDatabase(*dbRecord)
	return &record, nil
}

// GetMonth returns one record per calendar day of the period, ordered by
// date, with zero-valued records for days that have no stored data.
func (s *ReportServiceImpl) GetMonth(ctx context.Context, userID string, periodText string) ([]domain.AttendanceRecord, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user ID is required", nil)
	}

	period, err := domain.ParsePeriod(periodText)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached := s.cache.Get(userID, period.String()); cached != nil {
			return cached, nil
		}
	}

	dbRecords, err := s.repo.GetRecordRange(ctx, userID,
		domain.FormatDate(period.StartDate), domain.FormatDate(period.EndDate))
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*sqlite.AttendanceRecord, len(dbRecords))
	for _, dbRecord := range dbRecords {
		byDate[dbRecord.Date] = dbRecord
	}

	days := period.Days()
	records := make([]domain.AttendanceRecord, 0, len(days))
	for _, day := range days {
		if dbRecord, ok := byDate[domain.FormatDate(day)]; ok {
			records = append(records, s.mapper.RecordFromDatabase(*dbRecord))
		} else {
			records = append(records, s.mapper.EmptyRecord(userID, day))
		}
	}

	if s.cache != nil {
		s.cache.Set(userID, period.String(), records)
	}
	return records, nil
}

// InvalidateUser drops cached month results for the user. Called by the
// mutating services after every committed write.
func (s *ReportServiceImpl) InvalidateUser(userID string) {
	if s.cache != nil {
		s.cache.InvalidateUser(userID)
	}
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errors"
	"attendance-tracker/internal/logging"
	"attendance-tracker/internal/validation"
)

func newEditFixture() (*EditServiceImpl, *mockRepository) {
	repo := newMockRepository()
	service := NewEditService(repo, domain.NewMapper(), validation.NewSessionValidator(), logging.Nop())
	service.now = func() time.Time { return time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC) }
	return service, repo
}

func closedSession(clockIn, clockOut time.Time, breaks ...domain.Break) domain.WorkSession {
	return domain.WorkSession{ClockIn: clockIn, ClockOut: &clockOut, Breaks: breaks}
}

func TestEditService_ReplaceDay(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	hhmm := func(hour, min int) time.Time {
		return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
	}

	t.Run("should replace the day and recompute totals", func(t *testing.T) {
		service, repo := newEditFixture()
		_, err := repo.CreateRecord(ctx, "alice", "2025-03-10", time.Now())
		require.NoError(t, err)

		end := hhmm(12, 30)
		replacement := []domain.WorkSession{
			closedSession(hhmm(9, 0), hhmm(13, 0), domain.Break{Start: hhmm(12, 0), End: &end}),
			closedSession(hhmm(14, 0), hhmm(18, 0)),
		}

		require.NoError(t, service.ReplaceDay(ctx, "alice", day, replacement))

		record, err := repo.GetRecord(ctx, "alice", "2025-03-10")
		require.NoError(t, err)
		assert.Len(t, record.Sessions, 2)
		// (4h - 30m) + 4h of work, 30m of break.
		assert.Equal(t, int64(450*60*1000), record.WorkTotalMs)
		assert.Equal(t, int64(30*60*1000), record.BreakTotalMs)
	})

	t.Run("should reject overlapping sessions and leave the day unchanged", func(t *testing.T) {
		service, repo := newEditFixture()
		record, err := repo.CreateRecord(ctx, "alice", "2025-03-10", time.Now())
		require.NoError(t, err)
		versionBefore := record.Version

		replacement := []domain.WorkSession{
			closedSession(hhmm(9, 0), hhmm(13, 0)),
			closedSession(hhmm(12, 0), hhmm(18, 0)),
		}

		err = service.ReplaceDay(ctx, "alice", day, replacement)

		assert.True(t, errors.IsKind(err, errors.KindOverlappingSession))
		after, _ := repo.GetRecord(ctx, "alice", "2025-03-10")
		assert.Equal(t, versionBefore, after.Version)
		assert.Empty(t, after.Sessions)
	})

	t.Run("should allow touching session boundaries", func(t *testing.T) {
		service, repo := newEditFixture()
		_, err := repo.CreateRecord(ctx, "alice", "2025-03-10", time.Now())
		require.NoError(t, err)

		replacement := []domain.WorkSession{
			closedSession(hhmm(9, 0), hhmm(13, 0)),
			closedSession(hhmm(13, 0), hhmm(17, 0)),
		}

		assert.NoError(t, service.ReplaceDay(ctx, "alice", day, replacement))
	})

	t.Run("should reject an inverted session interval", func(t *testing.T) {
		service, repo := newEditFixture()
		_, err := repo.CreateRecord(ctx, "alice", "2025-03-10", time.Now())
		require.NoError(t, err)

		err = service.ReplaceDay(ctx, "alice", day, []domain.WorkSession{
			closedSession(hhmm(13, 0), hhmm(9, 0)),
		})

		assert.True(t, errors.IsKind(err, errors.KindInvalidInterval))
	})

	t.Run("should reject edits to a closed month", func(t *testing.T) {
		service, repo := newEditFixture()
		_, err := repo.CreateRecord(ctx, "alice", "2025-03-10", time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.InsertMonthClosure(ctx, "alice", "2025-03", time.Now()))

		err = service.ReplaceDay(ctx, "alice", day, []domain.WorkSession{
			closedSession(hhmm(9, 0), hhmm(17, 0)),
		})

		assert.True(t, errors.IsKind(err, errors.KindMonthClosed))
	})

	t.Run("should return NotFound for a day without a record", func(t *testing.T) {
		service, _ := newEditFixture()

		err := service.ReplaceDay(ctx, "alice", day, []domain.WorkSession{
			closedSession(hhmm(9, 0), hhmm(17, 0)),
		})

		assert.True(t, errors.IsKind(err, errors.KindNotFound))
	})

	t.Run("should reject sessions dated outside the edited day", func(t *testing.T) {
		service, repo := newEditFixture()
		_, err := repo.CreateRecord(ctx, "alice", "2025-03-10", time.Now())
		require.NoError(t, err)

		other := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
		otherEnd := time.Date(2025, 3, 11, 17, 0, 0, 0, time.UTC)

		err = service.ReplaceDay(ctx, "alice", day, []domain.WorkSession{
			closedSession(other, otherEnd),
		})

		require.Error(t, err)
	})

	t.Run("should reject an open session when another day holds the user's open session", func(t *testing.T) {
		service, repo := newEditFixture()
		open, err := repo.CreateRecord(ctx, "alice", "2025-03-09", time.Now())
		require.NoError(t, err)
		_, err = repo.AppendSession(ctx, open.ID, open.Version, "alice",
			time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC), nil, 0, time.Now())
		require.NoError(t, err)
		_, err = repo.CreateRecord(ctx, "alice", "2025-03-10", time.Now())
		require.NoError(t, err)

		err = service.ReplaceDay(ctx, "alice", day, []domain.WorkSession{
			{ClockIn: hhmm(9, 0)},
		})

		assert.True(t, errors.IsKind(err, errors.KindAlreadyClockedIn))
		after, _ := repo.GetRecord(ctx, "alice", "2025-03-10")
		assert.Empty(t, after.Sessions)
	})

	t.Run("should accept an open session on the day that already holds it", func(t *testing.T) {
		service, repo := newEditFixture()
		record, err := repo.CreateRecord(ctx, "alice", "2025-03-10", time.Now())
		require.NoError(t, err)
		_, err = repo.AppendSession(ctx, record.ID, record.Version, "alice", hhmm(9, 0), nil, 0, time.Now())
		require.NoError(t, err)

		err = service.ReplaceDay(ctx, "alice", day, []domain.WorkSession{
			closedSession(hhmm(8, 0), hhmm(9, 0)),
			{ClockIn: hhmm(9, 30)},
		})

		require.NoError(t, err)
	})

	t.Run("should not consult the open session for a fully closed replacement", func(t *testing.T) {
		service, repo := newEditFixture()
		open, err := repo.CreateRecord(ctx, "alice", "2025-03-09", time.Now())
		require.NoError(t, err)
		_, err = repo.AppendSession(ctx, open.ID, open.Version, "alice",
			time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC), nil, 0, time.Now())
		require.NoError(t, err)
		_, err = repo.CreateRecord(ctx, "alice", "2025-03-10", time.Now())
		require.NoError(t, err)

		err = service.ReplaceDay(ctx, "alice", day, []domain.WorkSession{
			closedSession(hhmm(9, 0), hhmm(17, 0)),
		})

		require.NoError(t, err)
	})

	t.Run("should allow clearing the day with an empty replacement", func(t *testing.T) {
		service, repo := newEditFixture()
		_, err := repo.CreateRecord(ctx, "alice", "2025-03-10", time.Now())
		require.NoError(t, err)

		require.NoError(t, service.ReplaceDay(ctx, "alice", day, nil))

		record, _ := repo.GetRecord(ctx, "alice", "2025-03-10")
		assert.Empty(t, record.Sessions)
		assert.Zero(t, record.WorkTotalMs)
	})
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-tracker/internal/errors"
	"attendance-tracker/internal/logging"
)

func TestClosureService(t *testing.T) {
	ctx := context.Background()

	t.Run("should close a month and report it closed", func(t *testing.T) {
		service := NewClosureService(newMockRepository(), logging.Nop())

		require.NoError(t, service.CloseMonth(ctx, "alice", "2025-03"))

		closed, err := service.IsClosed(ctx, "alice", "2025-03")
		require.NoError(t, err)
		assert.True(t, closed)
	})

	t.Run("should treat a repeated close as a no-op", func(t *testing.T) {
		service := NewClosureService(newMockRepository(), logging.Nop())

		require.NoError(t, service.CloseMonth(ctx, "alice", "2025-03"))
		require.NoError(t, service.CloseMonth(ctx, "alice", "2025-03"))

		closed, err := service.IsClosed(ctx, "alice", "2025-03")
		require.NoError(t, err)
		assert.True(t, closed)
	})

	t.Run("should scope closure to the (user, period) pair", func(t *testing.T) {
		service := NewClosureService(newMockRepository(), logging.Nop())

		require.NoError(t, service.CloseMonth(ctx, "alice", "2025-03"))

		closed, err := service.IsClosed(ctx, "bob", "2025-03")
		require.NoError(t, err)
		assert.False(t, closed)

		closed, err = service.IsClosed(ctx, "alice", "2025-04")
		require.NoError(t, err)
		assert.False(t, closed)
	})

	t.Run("should reject a malformed period", func(t *testing.T) {
		service := NewClosureService(newMockRepository(), logging.Nop())

		err := service.CloseMonth(ctx, "alice", "March 2025")
		assert.True(t, errors.IsKind(err, errors.KindInvalidFormat))

		err = service.CloseMonth(ctx, "alice", "2025-00")
		assert.True(t, errors.IsKind(err, errors.KindInvalidMonth))
	})

	t.Run("should require a user ID", func(t *testing.T) {
		service := NewClosureService(newMockRepository(), logging.Nop())

		err := service.CloseMonth(ctx, "", "2025-03")
		require.Error(t, err)
	})
}

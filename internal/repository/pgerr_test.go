package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/playhall/platform/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}

	t.Run("raw driver codes", func(t *testing.T) {
		assert.True(t, IsRetryable(unique))
		assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
		assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))
		assert.False(t, IsRetryable(&pgconn.PgError{Code: "23514"}))
		assert.False(t, IsRetryable(errors.New("connection reset")))
	})

	t.Run("wrapped driver error stays retryable", func(t *testing.T) {
		assert.True(t, IsRetryable(fmt.Errorf("scan session: %w", unique)))
	})

	t.Run("conflict with cause stays retryable", func(t *testing.T) {
		// A lost open-session insert race must reach the settlement retry
		// loop through the conflict translation.
		err := domain.ErrConflictCause("open session already exists", fmt.Errorf("scan session: %w", unique))
		assert.True(t, IsRetryable(err))
	})

	t.Run("conflict without cause is terminal", func(t *testing.T) {
		assert.False(t, IsRetryable(domain.ErrConflict("player already entered this jackpot")))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, IsUniqueViolation(nil))
}

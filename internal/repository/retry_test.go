package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

func TestWithTimeoutPassesThroughSuccess(t *testing.T) {
	err := withTimeout(context.Background(), func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		require.True(t, hasDeadline)
		return nil
	})
	assert.NoError(t, err)
}

func TestWithTimeoutMapsDeadlineToUnavailable(t *testing.T) {
	err := withTimeout(context.Background(), func(ctx context.Context) error {
		return context.DeadlineExceeded
	})
	assert.True(t, apperrors.IsCode(err, "UNAVAILABLE"))
}

func TestWithTimeoutKeepsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withTimeout(ctx, func(opCtx context.Context) error {
		return opCtx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("syntax error")
	calls := 0
	err := withRetry(context.Background(), func(context.Context) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversFromTransientError(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return context.DeadlineExceeded
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustionIsUnavailable(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func(context.Context) error {
		calls++
		return context.DeadlineExceeded
	})
	assert.True(t, apperrors.IsCode(err, "UNAVAILABLE"))
	assert.Equal(t, maxAttempts, calls)
}

func TestWithRetryReturnsWithoutFinalBackoff(t *testing.T) {
	// Two sleeps between three attempts (100ms + 200ms); a sleep after
	// the last attempt would add 400ms more.
	start := time.Now()
	err := withRetry(context.Background(), func(context.Context) error {
		return context.DeadlineExceeded
	})
	elapsed := time.Since(start)

	assert.True(t, apperrors.IsCode(err, "UNAVAILABLE"))
	assert.GreaterOrEqual(t, elapsed, baseBackoff+2*baseBackoff)
	assert.Less(t, elapsed, 6*baseBackoff)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(context.DeadlineExceeded))
	assert.False(t, isTransient(errors.New("constraint violation")))
}

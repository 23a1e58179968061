package repository

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

const (
	storageTimeout = 3 * time.Second
	maxAttempts    = 3
	baseBackoff    = 100 * time.Millisecond
)

// withTimeout bounds a single storage call. Deadline expiry surfaces as
// UNAVAILABLE so callers never hang on a stuck backend.
func withTimeout(ctx context.Context, fn func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	err := fn(opCtx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return apperrors.NewUnavailable(err)
	}
	return err
}

// withRetry bounds and retries a read-only storage call with backoff.
// Mutations go through withTimeout instead: a write whose result is
// unknown must not be replayed blindly.
func withRetry(ctx context.Context, fn func(context.Context) error) error {
	var err error
	backoff := baseBackoff
	for attempt := 0; attempt < maxAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, storageTimeout)
		err = fn(opCtx)
		cancel()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return apperrors.NewUnavailable(err)
		}
		backoff *= 2
	}
	return apperrors.NewUnavailable(err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return pgconn.SafeToRetry(err)
}

package util

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxLockRetries = 3

// LockRetryDelay is the first backoff step; each retry doubles it.
var LockRetryDelay = 100 * time.Millisecond

// IsLockError reports whether err is SQLite's busy/locked failure.
func IsLockError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

// RetryOnLock retries the given function if it fails with a database lock error
func RetryOnLock(ctx context.Context, logger *zap.Logger, operation func() error) error {
	_, err := RetryOnLockWithResult(ctx, logger, func() (struct{}, error) {
		return struct{}{}, operation()
	})
	return err
}

// RetryOnLockWithResult retries the given function if it fails with a database lock error
// and returns the result along with any error
func RetryOnLockWithResult[T any](ctx context.Context, logger *zap.Logger, operation func() (T, error)) (T, error) {
	var result T
	var err error

	for i := 0; i < maxLockRetries; i++ {
		result, err = operation()
		if !IsLockError(err) {
			return result, err
		}
		if i == maxLockRetries-1 {
			break
		}

		// Exponential backoff: 100ms, 200ms
		delay := LockRetryDelay * time.Duration(1<<i)
		logger.Warn("database locked, retrying", zap.Duration("delay", delay), zap.Int("attempt", i+1))
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(delay):
		}
	}

	// If we've exhausted all retries, return the last result and error
	return result, err
}

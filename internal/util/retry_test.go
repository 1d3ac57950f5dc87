package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fastRetries(t *testing.T) {
	t.Helper()
	prev := LockRetryDelay
	LockRetryDelay = time.Millisecond
	t.Cleanup(func() { LockRetryDelay = prev })
}

func TestRetryOnLock_SucceedsAfterLock(t *testing.T) {
	fastRetries(t)
	calls := 0
	err := RetryOnLock(context.Background(), zap.NewNop(), func() error {
		calls++
		if calls < 2 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryOnLock_GivesUp(t *testing.T) {
	fastRetries(t)
	calls := 0
	err := RetryOnLock(context.Background(), zap.NewNop(), func() error {
		calls++
		return errors.New("insert: database is locked")
	})
	assert.True(t, IsLockError(err))
	assert.Equal(t, maxLockRetries, calls)
}

func TestRetryOnLock_NoBackoffAfterLastAttempt(t *testing.T) {
	prev := LockRetryDelay
	LockRetryDelay = 40 * time.Millisecond
	t.Cleanup(func() { LockRetryDelay = prev })

	core, logs := observer.New(zapcore.WarnLevel)
	start := time.Now()
	err := RetryOnLock(context.Background(), zap.New(core), func() error {
		return errors.New("database is locked")
	})
	elapsed := time.Since(start)

	assert.True(t, IsLockError(err))
	// 40ms + 80ms between three attempts; a trailing sleep would add 160ms
	assert.Equal(t, maxLockRetries-1, logs.FilterMessage("database locked, retrying").Len())
	assert.Less(t, elapsed, 240*time.Millisecond)
}

func TestRetryOnLock_OtherErrorsReturnImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("constraint failed")
	err := RetryOnLock(context.Background(), zap.NewNop(), func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryOnLockWithResult_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := RetryOnLockWithResult(ctx, zap.NewNop(), func() (int, error) {
		return 7, errors.New("database is locked")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 7, got)
}

package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(errors.New("rpc error: code = Unavailable desc = connection refused")))
	assert.True(t, IsRetryableError(errors.New("context deadline exceeded")))
	assert.False(t, IsRetryableError(errors.New("rpc error: code = PermissionDenied")))
}

func TestRetry(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), cfg, func(attempt int) error {
			calls++
			if attempt < 2 {
				return errors.New("connection refused")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), cfg, func(int) error {
			calls++
			return errors.New("permission denied")
		})
		assert.EqualError(t, err, "permission denied")
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after the budget", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), cfg, func(int) error {
			calls++
			return errors.New("unavailable")
		})
		assert.Error(t, err)
		assert.Equal(t, cfg.MaxRetries+1, calls)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := &RetryConfig{MaxRetries: 3, BaseDelay: time.Hour, MaxDelay: time.Hour}
		err := Retry(ctx, slow, func(int) error { return errors.New("timeout") })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

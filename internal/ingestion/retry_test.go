package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestRetry(t *testing.T) {
	transient := errors.New("smtp 421 try again later")
	permanent := errors.New("smtp 535 bad credentials")

	tests := []struct {
		name         string
		maxRetries   int
		failures     int
		failWith     error
		wantAttempts int
		wantErr      bool
	}{
		{"first attempt succeeds", 2, 0, nil, 1, false},
		{"succeeds after transient failures", 3, 2, NewRetryableError(transient), 3, false},
		{"gives up when exhausted", 2, 10, NewRetryableError(transient), 3, true},
		{"permanent error is not retried", 5, 10, permanent, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Retry(context.Background(), fastPolicy(tt.maxRetries), func() error {
				attempts++
				if attempts <= tt.failures {
					return tt.failWith
				}
				return nil
			})

			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, transient) || errors.Is(err, permanent))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:     5,
		InitialBackoff: time.Second,
		MaxBackoff:     time.Second,
		BackoffFactor:  1,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	attempts := 0
	err := Retry(ctx, policy, func() error {
		attempts++
		return NewRetryableError(errors.New("unavailable"))
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, attempts)
}

func TestRetry_RetryAfterOverridesBackoff(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:     1,
		InitialBackoff: time.Hour,
		MaxBackoff:     time.Hour,
		BackoffFactor:  1,
	}

	attempts := 0
	start := time.Now()
	err := Retry(context.Background(), policy, func() error {
		attempts++
		if attempts == 1 {
			return NewRetryableErrorWithDelay(errors.New("rate limited"), 5*time.Millisecond)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Less(t, time.Since(start), time.Second)
}

func TestIsRetryable(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), NewRetryableError(errors.New("inner")))

	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.True(t, IsRetryable(NewRetryableError(errors.New("retry"))))
	assert.True(t, IsRetryable(wrapped))
}

func TestBackoff(t *testing.T) {
	policy := RetryPolicy{
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
	}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for attempt, expected := range want {
		assert.Equal(t, expected, backoff(policy, attempt), "attempt %d", attempt)
	}

	policy.Jitter = true
	for i := 0; i < 50; i++ {
		d := backoff(policy, 1)
		assert.GreaterOrEqual(t, d, 1800*time.Millisecond)
		assert.LessOrEqual(t, d, 2200*time.Millisecond)
	}
}

func TestRetryableErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", NewRetryableError(errors.New("boom")).Error())
	assert.Equal(t, "boom (retry after 5s)", NewRetryableErrorWithDelay(errors.New("boom"), 5*time.Second).Error())
}

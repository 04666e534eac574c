package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ops-journal/internal/pkg/ratelimit"
)

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit then blocks", func(t *testing.T) {
		limiter := ratelimit.NewMemoryLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			ok, err := limiter.Allow(ctx, "sam@example.com|10.0.0.1")
			assert.NoError(t, err)
			assert.True(t, ok, "attempt %d", i+1)
		}

		ok, err := limiter.Allow(ctx, "sam@example.com|10.0.0.1")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := ratelimit.NewMemoryLimiter(1, time.Minute)

		ok, _ := limiter.Allow(ctx, "a")
		assert.True(t, ok)
		ok, _ = limiter.Allow(ctx, "a")
		assert.False(t, ok)

		ok, _ = limiter.Allow(ctx, "b")
		assert.True(t, ok)
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		limiter := ratelimit.NewMemoryLimiter(1, 10*time.Millisecond)

		ok, _ := limiter.Allow(ctx, "a")
		assert.True(t, ok)
		ok, _ = limiter.Allow(ctx, "a")
		assert.False(t, ok)

		time.Sleep(20 * time.Millisecond)

		ok, _ = limiter.Allow(ctx, "a")
		assert.True(t, ok)
	})
}

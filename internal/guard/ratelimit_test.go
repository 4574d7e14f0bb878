package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterLocal(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		rl := NewRateLimiter(nil, 3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, rl.Check(ctx, "p1").Allowed)
		}

		res := rl.Check(ctx, "p1")
		assert.False(t, res.Allowed)
		assert.Equal(t, "rate_limiter", res.Guard)
		assert.Contains(t, res.Reason, "rate limit exceeded")
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := NewRateLimiter(nil, 1, time.Minute)

		assert.True(t, rl.Check(ctx, "p1").Allowed)
		assert.False(t, rl.Check(ctx, "p1").Allowed)
		assert.True(t, rl.Check(ctx, "p2").Allowed)
	})

	t.Run("entries age out of the window", func(t *testing.T) {
		rl := NewRateLimiter(nil, 2, 30*time.Millisecond)

		assert.True(t, rl.Check(ctx, "p1").Allowed)
		assert.True(t, rl.Check(ctx, "p1").Allowed)
		assert.False(t, rl.Check(ctx, "p1").Allowed)

		time.Sleep(40 * time.Millisecond)
		assert.True(t, rl.Check(ctx, "p1").Allowed)
	})
}

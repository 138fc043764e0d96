package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimiterBurstThenBlock(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("conv-1"), "burst request %d should pass", i)
	}
	assert.False(t, rl.Allow("conv-1"))
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)

	assert.True(t, rl.Allow("conv-1"))
	assert.False(t, rl.Allow("conv-1"))
	assert.True(t, rl.Allow("conv-2"))
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)

	assert.True(t, rl.Allow("conv-1"))
	assert.False(t, rl.Allow("conv-1"))

	rl.Forget("conv-1")
	assert.True(t, rl.Allow("conv-1"))
}

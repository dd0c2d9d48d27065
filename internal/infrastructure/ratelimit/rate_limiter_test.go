package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowEnforcesBurstPerUserAndAction(t *testing.T) {
	rl := NewRateLimiter(map[string]Policy{
		ActionSendMessage: PerMinute(2),
	})

	allowed, _ := rl.Allow("u1", ActionSendMessage)
	assert.True(t, allowed)
	allowed, _ = rl.Allow("u1", ActionSendMessage)
	assert.True(t, allowed)

	allowed, wait := rl.Allow("u1", ActionSendMessage)
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))

	allowed, _ = rl.Allow("u2", ActionSendMessage)
	assert.True(t, allowed, "buckets are per user")
}

func TestAllowIgnoresActionsWithoutPolicy(t *testing.T) {
	rl := NewRateLimiter(map[string]Policy{})

	for i := 0; i < 100; i++ {
		allowed, _ := rl.Allow("u1", ActionTyping)
		assert.True(t, allowed)
	}
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var rl *RateLimiter
	allowed, wait := rl.Allow("u1", ActionSendMessage)
	assert.True(t, allowed)
	assert.Zero(t, wait)
}

func TestCleanupRemovesIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(map[string]Policy{ActionTyping: PerSecond(5)})
	rl.Allow("u1", ActionTyping)
	rl.Allow("u2", ActionTyping)

	assert.Equal(t, 0, rl.Cleanup(time.Hour))
	assert.Equal(t, 2, rl.Cleanup(-time.Second))
}

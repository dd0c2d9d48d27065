package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendMessage = "send_message"
	ActionCreateChat  = "create_chat"
	ActionTyping      = "typing"
	ActionPayment     = "payment"
)

// Policy is the token bucket applied to one action.
type Policy struct {
	Limit rate.Limit
	Burst int
}

func PerMinute(n int) Policy {
	return Policy{Limit: rate.Limit(float64(n) / 60), Burst: n}
}

func PerSecond(n int) Policy {
	return Policy{Limit: rate.Limit(n), Burst: n}
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per user and action.
// Actions without a policy are never limited.
type RateLimiter struct {
	policies map[string]Policy
	limiters map[string]*entry
	mutex    sync.Mutex
}

func NewRateLimiter(policies map[string]Policy) *RateLimiter {
	return &RateLimiter{
		policies: policies,
		limiters: make(map[string]*entry),
	}
}

// Allow reports whether the user may perform action now. When denied it
// returns how long the caller should wait before retrying.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	if rl == nil {
		return true, 0
	}
	policy, ok := rl.policies[action]
	if !ok {
		return true, 0
	}

	now := time.Now()
	key := userID + ":" + action

	rl.mutex.Lock()
	e, ok := rl.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(policy.Limit, policy.Burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = now
	rl.mutex.Unlock()

	reservation := e.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Second
	}
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup drops buckets idle for longer than maxIdle and returns how many were removed.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	removed := 0
	for key, e := range rl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// Start runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(interval)
			case <-ctx.Done():
				return
			}
		}
	}()
}

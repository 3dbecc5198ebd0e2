package app

import (
	"sync"
	"time"

	"github.com/dkeye/Tandem/internal/domain"
)

// RateLimiter admits at most limit events per user within a sliding interval.
// With limit 1 it is a per-user cooldown.
type RateLimiter struct {
	mu       sync.Mutex
	history  map[domain.UserID][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		history:  make(map[domain.UserID][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// NewCooldown enforces a minimum gap between admitted events of one user.
func NewCooldown(gap time.Duration) *RateLimiter {
	return NewRateLimiter(1, gap)
}

// Allow records the attempt when admitted. Rejected attempts do not extend
// the window.
func (rl *RateLimiter) Allow(uid domain.UserID) bool {
	if rl.interval <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[uid]
	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) >= rl.limit {
		rl.history[uid] = fresh
		return false
	}
	rl.history[uid] = append(fresh, now)
	return true
}

func (rl *RateLimiter) Forget(uid domain.UserID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, uid)
}

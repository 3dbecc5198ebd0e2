package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time          { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCooldown_SuppressesWithinWindow(t *testing.T) {
	req := require.New(t)
	clock := &manualClock{t: time.Unix(1700000000, 0)}
	cd := NewCooldown(time.Second)
	cd.now = clock.Now

	req.True(cd.Allow("alice"))
	clock.Advance(400 * time.Millisecond)
	req.False(cd.Allow("alice"))

	// other users are independent
	req.True(cd.Allow("bob"))

	// a rejected attempt does not push the window
	clock.Advance(700 * time.Millisecond)
	req.True(cd.Allow("alice"))
}

func TestRateLimiter_Limit(t *testing.T) {
	req := require.New(t)
	clock := &manualClock{t: time.Unix(1700000000, 0)}
	rl := NewRateLimiter(3, time.Minute)
	rl.now = clock.Now

	for i := 0; i < 3; i++ {
		req.True(rl.Allow("alice"))
		clock.Advance(time.Second)
	}
	req.False(rl.Allow("alice"))

	rl.Forget("alice")
	req.True(rl.Allow("alice"))
}

func TestCooldown_ZeroDisables(t *testing.T) {
	cd := NewCooldown(0)
	require.True(t, cd.Allow("alice"))
	require.True(t, cd.Allow("alice"))
}

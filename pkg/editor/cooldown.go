// pkg/editor/cooldown.go
package editor

import (
	"sync"
	"time"
)

// Cooldown limits how often a held action repeats. A fresh Cooldown is
// ready immediately.
type Cooldown struct {
	delay time.Duration
	last  time.Time
	now   func() time.Time
	mu    sync.Mutex
}

// NewCooldown creates a cooldown that allows one action per delay
func NewCooldown(delay time.Duration) *Cooldown {
	return &Cooldown{delay: delay, now: time.Now}
}

// Ready reports whether the delay has passed since the last Reset
func (c *Cooldown) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready()
}

func (c *Cooldown) ready() bool {
	return c.last.IsZero() || c.now().Sub(c.last) >= c.delay
}

// Reset starts a new delay
func (c *Cooldown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = c.now()
}

// Allow consumes the cooldown if it is ready
func (c *Cooldown) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready() {
		return false
	}
	c.last = c.now()
	return true
}

// Delay returns the repeat interval
func (c *Cooldown) Delay() time.Duration { return c.delay }

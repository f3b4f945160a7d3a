package encounter

import (
	"sync"
	"time"
)

// MonotonicClock reports wall time in seconds since it was created.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts a clock at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now returns seconds elapsed since construction.
//
// Postcondition: results never decrease.
func (c *MonotonicClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// ManualClock only moves when told to. It drives fixed-step simulation and tests.
type ManualClock struct {
	mu  sync.Mutex
	now float64
}

// NewManualClock creates a clock reading start seconds.
func NewManualClock(start float64) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current reading in seconds.
func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new reading.
// Negative durations are ignored.
func (c *ManualClock) Advance(d time.Duration) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += d.Seconds()
	}
	return c.now
}

// Set jumps the clock to sec. Setting it backwards is allowed; callers own
// the consequences.
func (c *ManualClock) Set(sec float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = sec
}

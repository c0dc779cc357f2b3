package testfixtures

import (
	"sync"
	"time"
)

// Clock is a hand-driven time source. Services take a now func, so tests
// inject NowFunc and steer booking timestamps by calling Set or Advance.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock pinned to start, or to the shared ReferenceTime
// when start is the zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now reports the instant the clock is pinned to.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc adapts the clock to the now-func shape the services accept. A nil
// clock falls back to the real time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set pins the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Advance moves the clock forward by d and reports the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// Current is an alias for Now for call sites that read the clock without
// implying time progression.
func (c *Clock) Current() time.Time {
	return c.Now()
}

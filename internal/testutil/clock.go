// Package testutil provides deterministic helpers shared by the harness
// and package tests.
package testutil

import (
	"sync"
	"time"
)

// Epoch is the fixed instant every deterministic clock starts at.
// A constant start time keeps command timestamps, and therefore merge
// decisions, identical across runs.
var Epoch = time.Unix(1700000000, 0).UTC()

// Clock is a thread-safe simulated wall clock. It only moves when told
// to, so tests control exactly how much time "passes" between commands.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

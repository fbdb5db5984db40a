// Package clock provides the elapsed-time source queried once per frame.
package clock

import (
	"sync"
	"time"
)

// Clock reports seconds elapsed since it was started.
type Clock interface {
	Elapsed() float64
}

// Monotonic is the real clock. time.Time carries a monotonic reading,
// so wall clock adjustments do not affect Elapsed.
type Monotonic struct {
	start time.Time
}

// NewMonotonic starts a clock at the current instant.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// Elapsed returns seconds since the clock was created.
func (c *Monotonic) Elapsed() float64 {
	return time.Since(c.start).Seconds()
}

// Manual is a controllable clock for tests.
type Manual struct {
	mu      sync.RWMutex
	elapsed float64
}

// NewManual creates a manual clock at the given elapsed seconds.
func NewManual(elapsed float64) *Manual {
	return &Manual{elapsed: elapsed}
}

func (m *Manual) Elapsed() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.elapsed
}

// Set jumps the clock to the given elapsed seconds.
func (m *Manual) Set(elapsed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elapsed = elapsed
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elapsed += d.Seconds()
}

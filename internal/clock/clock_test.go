package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonic_NonDecreasing(t *testing.T) {
	c := NewMonotonic()
	a := c.Elapsed()
	time.Sleep(2 * time.Millisecond)
	b := c.Elapsed()

	assert.GreaterOrEqual(t, a, 0.0)
	assert.Greater(t, b, a)
}

func TestManual_SetAndAdvance(t *testing.T) {
	c := NewManual(1.5)
	assert.Equal(t, 1.5, c.Elapsed())

	c.Advance(500 * time.Millisecond)
	assert.InDelta(t, 2.0, c.Elapsed(), 1e-9)

	c.Set(10)
	assert.Equal(t, 10.0, c.Elapsed())
}

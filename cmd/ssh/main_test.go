package main

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeTracker(t *testing.T) {
	s := newSizeTracker(80, 24)
	w, h, err := s.getSize()
	assert.NoError(t, err)
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.update(100+i, 30)
			_, _, _ = s.getSize()
		}(i)
	}
	wg.Wait()

	w, h, _ = s.getSize()
	assert.GreaterOrEqual(t, w, 100)
	assert.Equal(t, 30, h)
}

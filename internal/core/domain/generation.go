package domain

import "sync"

// Generation identifies one desired reload. Values start at 0 and only grow.
type Generation uint64

// InitialGeneration is the generation used for the first load at startup.
const InitialGeneration Generation = 0

// IsStale reports whether work tagged with task is superseded by current.
func IsStale(task, current Generation) bool {
	return task != current
}

// GenerationCounter hands out strictly increasing generations.
// The zero value is ready to use and starts at InitialGeneration.
type GenerationCounter struct {
	mu      sync.RWMutex
	current Generation
}

// Advance increments the counter and returns the new current generation.
func (c *GenerationCounter) Advance() Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current++
	return c.current
}

// Current returns the latest generation.
func (c *GenerationCounter) Current() Generation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// IsStale reports whether g is no longer the current generation.
func (c *GenerationCounter) IsStale(g Generation) bool {
	return IsStale(g, c.Current())
}

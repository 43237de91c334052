package engine

import (
	"sync"

	"github.com/wricardo/realm-movement/game/movement"
)

// MovementRateCache maps tile type ids to the stack-level rate resolved for one
// builder invocation. It must not outlive that invocation: the rates depend on
// which units are in the stack.
type MovementRateCache struct {
	mu     sync.Mutex
	rates  map[string]movement.DoubleMovement
	seeded map[string]bool
}

// NewMovementRateCache creates a cache pre-seeded with known rates
func NewMovementRateCache(seed map[string]movement.DoubleMovement) *MovementRateCache {
	c := &MovementRateCache{
		rates:  make(map[string]movement.DoubleMovement, len(seed)),
		seeded: make(map[string]bool, len(seed)),
	}
	for id, rate := range seed {
		c.rates[id] = rate
		c.seeded[id] = true
	}
	return c
}

// Get returns the cached rate for a tile type
func (c *MovementRateCache) Get(tileTypeID string) (movement.DoubleMovement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rate, ok := c.rates[tileTypeID]
	return rate, ok
}

// Put stores a derived rate and returns the rate in effect. An existing entry
// is kept so concurrent derivations of the same tile type agree; inserted is
// false in that case.
func (c *MovementRateCache) Put(tileTypeID string, rate movement.DoubleMovement) (movement.DoubleMovement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.rates[tileTypeID]; ok {
		return existing, false
	}
	c.rates[tileTypeID] = rate
	return rate, true
}

// Seeded reports whether the rate for a tile type came from the caller
func (c *MovementRateCache) Seeded(tileTypeID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seeded[tileTypeID]
}

// Snapshot copies the current contents
func (c *MovementRateCache) Snapshot() map[string]movement.DoubleMovement {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]movement.DoubleMovement, len(c.rates))
	for id, rate := range c.rates {
		out[id] = rate
	}
	return out
}

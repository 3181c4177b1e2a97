package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nhle/twodo/internal/store"
	"github.com/nhle/twodo/internal/tables"
)

// Clock is a manually advanced clock for deterministic timestamps.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTestStore creates an empty typed store backed by a fresh reactive
// store. Ids are sequential ("id-1", "id-2", ...) and timestamps come from
// the returned clock.
func NewTestStore(t *testing.T) (*store.Store, *Clock) {
	t.Helper()

	clock := NewClock()
	var (
		mu   sync.Mutex
		next int
	)
	ids := func() string {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("id-%d", next)
	}

	s := store.New(tables.New(), store.WithClock(clock.Now), store.WithIDGenerator(ids))
	return s, clock
}

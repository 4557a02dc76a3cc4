package floor

import (
	"sync"
	"time"
)

// IDGenerator mints the bare order-item ids. Ids are millisecond timestamps,
// but strictly increasing even under rapid repeated calls: when the clock has
// not moved past the last issued value, the generator hands out last+1
// instead. Ids are never reused within a process lifetime.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator backed by the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// newIDGeneratorAt creates a generator with an injected clock, for tests.
func newIDGeneratorAt(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

// Next returns the next bare id.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now().UnixMilli()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	return ts
}

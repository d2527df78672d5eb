// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Counters of a single bridge run. The loop goroutine increments them;
// the runner snapshots them at termination.

package control

import (
	"maps"
	"sync"
	"time"

	"github.com/momentics/consolebridge/api"
)

// MetricsRegistry is a concurrency-safe set of named int64 counters.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]int64
	started  time.Time
}

var _ api.Control = (*MetricsRegistry)(nil)

// NewMetricsRegistry creates an empty registry and starts its clock.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]int64),
		started:  time.Now(),
	}
}

// Add increments key by delta. Unknown keys start at zero.
func (r *MetricsRegistry) Add(key string, delta int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[key] += delta
}

// Get returns the current value of key.
func (r *MetricsRegistry) Get(key string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[key]
}

// Stats returns a snapshot the caller may modify.
func (r *MetricsRegistry) Stats() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.counters)
}

// Elapsed reports how long the registry has been collecting.
func (r *MetricsRegistry) Elapsed() time.Duration {
	return time.Since(r.started)
}

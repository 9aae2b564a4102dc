// Package health holds the process-wide storage health state.
//
// The gate is a one-way switch: once the durable store is marked degraded
// it is never re-probed for the remainder of the process lifetime. This is
// a documented limitation, not an oversight.
package health

import (
	"sync"
	"sync/atomic"
)

// Gate guards access to the durable store. It is constructed once at
// startup and shared by reference, so concurrent requests race-freely
// agree on health transitions and warn exactly once per entity type.
type Gate struct {
	ready  atomic.Bool
	warned sync.Map // entity type -> struct{}
}

// NewGate creates a gate with the given initial probe result.
func NewGate(ready bool) *Gate {
	g := &Gate{}
	g.ready.Store(ready)
	return g
}

// Ready reports whether the durable store may be used.
func (g *Gate) Ready() bool {
	return g.ready.Load()
}

// Degrade permanently switches the process to the in-memory fallback.
func (g *Gate) Degrade() {
	g.ready.Store(false)
}

// WarnOnce returns true only for the first caller per entity type, so a
// sustained outage produces a single warning log instead of flooding.
func (g *Gate) WarnOnce(entity string) bool {
	_, loaded := g.warned.LoadOrStore(entity, struct{}{})
	return !loaded
}

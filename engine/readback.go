package engine

import (
	"slices"

	"github.com/pthm-cable/flock/device"
)

// Front returns the authoritative particle state for drawing. The slice is
// read-only and valid until the next Frame or Rebuild; callers must not
// keep it longer. Nil when not ready.
func (e *Engine) Front() []device.Particle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready.Load() {
		return nil
	}
	return e.bufs.frontBuffer().Data()
}

// ParticleCount returns the number of live particles.
func (e *Engine) ParticleCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bufs.count
}

// GridLists copies the cell heads and next indices as left by the last
// build stage. Each list is in unspecified order.
func (e *Engine) GridLists() (heads, next []int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bufs.heads == nil {
		return nil, nil
	}
	return slices.Clone(e.bufs.heads.Data()), slices.Clone(e.bufs.next.Data())
}

// Snapshot copies the front buffer.
func (e *Engine) Snapshot() []device.Particle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready.Load() {
		return nil
	}
	return slices.Clone(e.bufs.frontBuffer().Data())
}

package params

import "sync/atomic"

// Store hands parameter records from a writer (UI, config reload) to the
// frame loop. The writer never blocks the loop: Submit publishes a whole
// clamped record and Take claims it at the next frame boundary.
type Store struct {
	pending atomic.Pointer[Params]
	version atomic.Uint64
}

// Submit clamps p and queues it. A record that was not yet taken is replaced.
func (s *Store) Submit(p Params) {
	c := Clamp(p)
	s.pending.Store(&c)
	s.version.Add(1)
}

// Take returns the pending record, or nil if nothing was submitted since the
// last call.
func (s *Store) Take() *Params {
	return s.pending.Swap(nil)
}

// Version counts submissions. Useful for UIs that poll for changes.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

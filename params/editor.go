package params

// Editor holds the UI's working copy of the parameters and releases it at
// most once per interval. A slider drag then becomes a few whole-record
// updates instead of one per frame, and edits made while the frame loop is
// paused stay visible in the working copy until they are applied.
type Editor struct {
	edited   Params
	interval float64 // seconds
	lastSent float64
	sent     bool
	dirty    bool
}

// NewEditor starts an editor from p with the given send interval in seconds.
func NewEditor(p Params, interval float64) *Editor {
	return &Editor{edited: Clamp(p), interval: interval}
}

// Edited returns the working copy.
func (e *Editor) Edited() Params {
	return e.edited
}

// Edit replaces the working copy with the clamped p.
func (e *Editor) Edit(p Params) {
	c := Clamp(p)
	if c == e.edited {
		return
	}
	e.edited = c
	e.dirty = true
}

// Pending reports whether the working copy has edits not yet released.
func (e *Editor) Pending() bool {
	return e.dirty
}

// Flush returns the working copy when it has unreleased edits and at least
// one interval has passed since the previous release. now is in seconds on
// any monotonic clock.
func (e *Editor) Flush(now float64) (Params, bool) {
	if !e.dirty {
		return Params{}, false
	}
	if e.sent && now-e.lastSent < e.interval {
		return Params{}, false
	}
	e.lastSent = now
	e.sent = true
	e.dirty = false
	return e.edited, true
}

package engine

import (
	"github.com/pthm-cable/flock/kernels"
	"github.com/pthm-cable/flock/params"
	"github.com/pthm-cable/flock/telemetry"
)

// Frame applies any pending parameter record, then runs clear, build and
// step and swaps the ping-pong pair. dt is expected to be clamped by the
// caller. When the engine is not ready the frame is a no-op.
func (e *Engine) Frame(dt float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.perf != nil {
		e.perf.StartTick()
		defer e.perf.EndTick()
		e.perf.StartPhase(telemetry.PhaseApply)
	}
	if next := e.pending.Take(); next != nil {
		e.applyLocked(*next)
	}

	if !e.ready.Load() {
		return
	}
	e.dispatchLocked(max(dt, 0))
}

// applyLocked installs a clamped record, reallocating when the particle
// count or neighbor radius changed enough to need a new grid.
func (e *Engine) applyLocked(next params.Params) {
	rebuild := e.needsRebuildLocked(next)
	e.params = next
	if !rebuild {
		return
	}
	// A failed rebuild leaves the engine not ready with a diagnostic.
	_ = e.rebuildLocked(next.ParticleCount)
}

// needsRebuildLocked compares next against the radius the current grid was
// sized for, not the last applied record, so small edits cannot accumulate
// past the cell size. A grid that was never sized is left to Init.
func (e *Engine) needsRebuildLocked(next params.Params) bool {
	if e.grid.CellCount == 0 {
		return false
	}
	sized := e.params
	sized.NeighborRadius = e.grid.NeighborRadius
	return params.NeedsRebuild(sized, next) || next.NeighborRadius > e.grid.CellSize
}

// dispatchLocked records and submits one frame.
func (e *Engine) dispatchLocked(dt float32) {
	n := e.bufs.count
	e.set.Upload(kernels.Frame{
		Params:        e.params,
		Grid:          e.grid,
		Bounds:        e.bounds,
		ParticleCount: n,
		Dt:            dt,
	})

	q := e.queue
	q.Reset()
	q.Bind(kernels.SlotParticlesIn, e.bufs.frontBuffer())
	q.Bind(kernels.SlotParticlesOut, e.bufs.backBuffer())
	q.Bind(kernels.SlotCellHeads, e.bufs.heads)
	q.Bind(kernels.SlotNextIndex, e.bufs.next)

	q.Signal(e.enter(StateClearing, telemetry.PhaseClear))
	q.Dispatch(e.set.Clear, e.set.Clear.Groups(e.grid.CellCount))
	q.Barrier()
	q.Signal(e.enter(StateBuilding, telemetry.PhaseBuild))
	q.Dispatch(e.set.Build, e.set.Build.Groups(n))
	q.Barrier()
	q.Signal(e.enter(StateStepping, telemetry.PhaseStep))
	q.Dispatch(e.set.Step, e.set.Step.Groups(n))
	q.Barrier()

	if err := q.Submit(); err != nil {
		e.fail("frame submit failed", err)
		return
	}

	e.bufs.swap()
	e.frames++
	e.simTime += float64(dt * e.params.SimSpeed)
	e.state.Store(int32(StateReady))
}

// enter returns a queue signal that moves the state machine to s and
// starts timing phase.
func (e *Engine) enter(s State, phase telemetry.Phase) func() {
	return func() {
		e.state.Store(int32(s))
		if e.perf != nil {
			e.perf.StartPhase(phase)
		}
	}
}

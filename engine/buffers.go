package engine

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/grid"
	"github.com/pthm-cable/flock/kernels"
	"github.com/pthm-cable/flock/params"
	"github.com/pthm-cable/flock/telemetry"
)

// headingAttempts bounds rejection sampling of a random heading.
const headingAttempts = 8

// buffers is the ping-pong pair plus the grid lists. front indexes the
// particle buffer holding the authoritative state.
type buffers struct {
	particles [2]*device.ParticleBuffer
	heads     *device.IndexBuffer
	next      *device.IndexBuffer
	front     int
	count     int
}

func (b *buffers) release() {
	b.particles[0].Release()
	b.particles[1].Release()
	b.heads.Release()
	b.next.Release()
	*b = buffers{}
}

func (b *buffers) frontBuffer() *device.ParticleBuffer { return b.particles[b.front] }
func (b *buffers) backBuffer() *device.ParticleBuffer  { return b.particles[1-b.front] }

func (b *buffers) swap() { b.front = 1 - b.front }

// rebuildLocked releases the old buffers, sizes the grid and allocates and
// seeds fresh ones. The engine is not ready from the first release until
// seeding finishes. On failure nothing stays allocated.
func (e *Engine) rebuildLocked(n int) error {
	if e.perf != nil {
		e.perf.StartPhase(telemetry.PhaseRealloc)
	}
	e.markNotReady()
	e.bufs.release()

	n = min(max(n, params.MinParticles), params.MaxParticles)
	e.params.ParticleCount = n
	e.grid = grid.Size(e.bounds, e.params.NeighborRadius, e.budget)

	bufs, err := e.allocate(n, e.grid.CellCount)
	if err != nil {
		e.fail("allocation failed", err)
		return fmt.Errorf("rebuilding for %d particles: %w", n, err)
	}
	e.bufs = bufs

	seed(e.bufs.frontBuffer().Data(), e.rng, e.bounds, e.params)
	e.bufs.heads.Fill(-1)

	e.generation.Add(1)
	e.log.Info("buffers reallocated",
		"count", n,
		"cell_count", e.grid.CellCount,
		"cell_size", e.grid.CellSize,
		"dims", e.grid.Dims,
		"bytes", e.dev.Allocated(),
	)

	if !e.loaded {
		e.setDiagnostic(ErrNotInitialized.Error())
		return ErrNotInitialized
	}
	e.markReady()
	return nil
}

// allocate creates the four buffers or none of them.
func (e *Engine) allocate(n, cellCount int) (b buffers, err error) {
	defer func() {
		if err != nil {
			b.release()
		}
	}()
	b.count = n
	for i := range b.particles {
		if b.particles[i], err = e.dev.NewParticleBuffer(n); err != nil {
			return b, err
		}
	}
	if b.heads, err = e.dev.NewIndexBuffer(cellCount); err != nil {
		return b, err
	}
	if b.next, err = e.dev.NewIndexBuffer(n); err != nil {
		return b, err
	}
	return b, nil
}

// seed fills dst with particles at uniform positions inside bounds, each
// with a uniform random heading and a speed in
// [minSpeed, max(minSpeed, maxSpeed/2)].
func seed(dst []device.Particle, rng *rand.Rand, bounds grid.Bounds, p params.Params) {
	ext := bounds.Extent()
	lo := float64(p.MinSpeed)
	hi := max(lo, float64(p.MaxSpeed)/2)

	for i := range dst {
		pos := r3.Vec{
			X: bounds.Min.X + rng.Float64()*ext.X,
			Y: bounds.Min.Y + rng.Float64()*ext.Y,
			Z: bounds.Min.Z + rng.Float64()*ext.Z,
		}
		dir := randomHeading(rng)
		speed := lo + rng.Float64()*(hi-lo)
		vel := r3.Scale(speed, dir)

		heading := [3]float32{float32(dir.X), float32(dir.Y), float32(dir.Z)}
		dst[i] = device.Particle{
			Pos:   [4]float32{float32(pos.X), float32(pos.Y), float32(pos.Z), 1},
			Vel:   [4]float32{float32(vel.X), float32(vel.Y), float32(vel.Z), 0},
			Color: kernels.SeedColor(heading, float32(speed), p.MinSpeed, p.MaxSpeed),
		}
	}
}

// randomHeading samples a unit vector uniformly by rejection from the unit
// ball, falling back to +X.
func randomHeading(rng *rand.Rand) r3.Vec {
	for range headingAttempts {
		v := r3.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}
		if n := r3.Norm(v); n >= 1e-3 && n <= 1 {
			return r3.Scale(1/n, v)
		}
	}
	return r3.Vec{X: 1}
}

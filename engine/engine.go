// Package engine runs the flocking simulation on a compute device. It owns
// the particle, cell-head and next-index buffers, applies parameter records
// at frame boundaries, and drives the clear, build and step stages.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/grid"
	"github.com/pthm-cable/flock/kernels"
	"github.com/pthm-cable/flock/params"
	"github.com/pthm-cable/flock/telemetry"
)

// ErrNotInitialized is returned by Rebuild before kernels are loaded.
var ErrNotInitialized = errors.New("engine: kernels not loaded")

// State is the pipeline state.
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateClearing
	StateBuilding
	StateStepping
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateClearing:
		return "clearing"
	case StateBuilding:
		return "building"
	case StateStepping:
		return "stepping"
	default:
		return "unknown"
	}
}

// KernelLoader supplies the compiled stages.
type KernelLoader interface {
	Load(dev *device.Device) (kernels.Set, error)
}

// Options configures an Engine.
type Options struct {
	Bounds       grid.Bounds
	MaxCellCount int // <= 0 disables the cell budget
	Params       params.Params
	Seed         int64

	Logger *slog.Logger              // nil = slog.Default()
	Perf   *telemetry.PerfCollector // optional per-frame phase timing
}

// DefaultOptions returns the stock world [-10,10]^3 with default parameters.
func DefaultOptions() Options {
	return Options{
		Bounds:       grid.NewBounds([3]float32{-10, -10, -10}, [3]float32{10, 10, 10}),
		MaxCellCount: grid.DefaultMaxCellCount,
		Params:       params.Defaults(),
		Seed:         1,
	}
}

// Engine is the flocking engine. Configure and the read accessors are safe
// from any goroutine; Frame, Rebuild, Init and Close serialize on one lock.
type Engine struct {
	dev    *device.Device
	bounds grid.Bounds
	budget int
	log    *slog.Logger
	perf   *telemetry.PerfCollector

	pending params.Store

	mu      sync.Mutex
	params  params.Params
	set     kernels.Set
	loaded  bool
	bufs    buffers
	grid    grid.Spec
	queue   *device.Queue
	rng     *rand.Rand
	frames  uint64
	simTime float64

	ready      atomic.Bool
	state      atomic.Int32
	generation atomic.Uint64
	diag       atomic.Pointer[string]
}

// New creates an engine on dev. Nothing is allocated until Init.
func New(dev *device.Device, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		dev:    dev,
		bounds: opts.Bounds,
		budget: opts.MaxCellCount,
		log:    log,
		perf:   opts.Perf,
		params: params.Clamp(opts.Params),
		queue:  dev.NewQueue(),
		rng:    rand.New(rand.NewSource(opts.Seed)),
	}
	e.setDiagnostic("not initialized")
	return e
}

// Init checks device capabilities, loads the kernels and allocates buffers
// for the current particle count. It may be called again to recover after
// the environment or the kernel sources change.
func (e *Engine) Init(loader KernelLoader) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.markNotReady()

	if err := e.dev.CheckCapabilities(); err != nil {
		e.fail("capability check failed", err)
		return fmt.Errorf("initializing engine: %w", err)
	}

	set, err := loader.Load(e.dev)
	if err != nil {
		e.loaded = false
		e.fail("kernel load failed", err)
		return fmt.Errorf("initializing engine: %w", err)
	}
	e.set = set
	e.loaded = true

	if err := e.rebuildLocked(e.params.ParticleCount); err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	e.log.Info("engine ready",
		"particles", e.bufs.count,
		"cell_count", e.grid.CellCount,
		"workers", e.dev.Options().Workers,
	)
	return nil
}

// Configure queues a parameter record. It is clamped now and applied as a
// whole at the start of the next frame; a later call before that frame
// replaces it.
func (e *Engine) Configure(p params.Params) {
	e.pending.Submit(p)
}

// Rebuild reallocates and reseeds every buffer for n particles with the
// grid sized for the current neighbor radius. Earlier Front slices become
// invalid. Safe to call at any time.
func (e *Engine) Rebuild(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rebuildLocked(n)
}

// Ready reports whether frames will dispatch.
func (e *Engine) Ready() bool { return e.ready.Load() }

// Diagnostic describes why the engine is not ready, or "" when it is.
func (e *Engine) Diagnostic() string {
	if d := e.diag.Load(); d != nil {
		return *d
	}
	return ""
}

// State returns the pipeline state.
func (e *Engine) State() State { return State(e.state.Load()) }

// Generation counts successful reallocations.
func (e *Engine) Generation() uint64 { return e.generation.Load() }

// Params returns the applied parameter record.
func (e *Engine) Params() params.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Grid returns the current grid.
func (e *Engine) Grid() grid.Spec {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid
}

// Bounds returns the world box.
func (e *Engine) Bounds() grid.Bounds { return e.bounds }

// Frames returns the number of completed frames.
func (e *Engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// SimTime returns the simulated seconds elapsed, simSpeed included.
func (e *Engine) SimTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.simTime
}

// Close releases every buffer. The device stays open.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.markNotReady()
	e.bufs.release()
	e.setDiagnostic("closed")
}

func (e *Engine) markNotReady() {
	e.ready.Store(false)
	e.state.Store(int32(StateUninitialized))
}

func (e *Engine) markReady() {
	e.state.Store(int32(StateReady))
	e.diag.Store(nil)
	e.ready.Store(true)
}

func (e *Engine) setDiagnostic(msg string) {
	e.diag.Store(&msg)
}

// fail records err as the diagnostic and logs it.
func (e *Engine) fail(event string, err error) {
	e.markNotReady()
	e.setDiagnostic(fmt.Sprintf("%s: %v", event, err))
	e.log.Error(event, "error", err)
}

// Package device models a compute device: typed storage buffers with a
// memory budget, compiled kernels with named uniforms, and a command queue
// whose dispatches run on a persistent worker pool and are ordered by
// explicit barriers.
package device

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
)

var (
	// ErrUnsupported is returned when the device lacks a required feature level.
	ErrUnsupported = errors.New("device: unsupported feature level")
	// ErrOutOfMemory is returned when an allocation exceeds the memory limit.
	ErrOutOfMemory = errors.New("device: out of memory")
	// ErrCompile is wrapped by every kernel compilation failure.
	ErrCompile = errors.New("device: kernel compilation failed")
	// ErrReleased is returned when a submitted command references a released buffer.
	ErrReleased = errors.New("device: buffer released")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("device: closed")
)

// Defaults for Options.
const (
	DefaultWorkgroupSize    = 256
	DefaultMaxWorkgroupSize = 1024
	MaxBindings             = 8
)

// FeatureLevel is a major.minor capability version.
type FeatureLevel struct {
	Major, Minor int
}

// ComputeLevel is the minimum feature level that supports compute kernels
// with storage buffers and atomics.
var ComputeLevel = FeatureLevel{Major: 4, Minor: 3}

// ParseFeatureLevel parses "major.minor".
func ParseFeatureLevel(s string) (FeatureLevel, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return FeatureLevel{}, fmt.Errorf("parsing feature level %q: want major.minor", s)
	}
	ma, err := strconv.Atoi(major)
	if err != nil {
		return FeatureLevel{}, fmt.Errorf("parsing feature level %q: %w", s, err)
	}
	mi, err := strconv.Atoi(minor)
	if err != nil {
		return FeatureLevel{}, fmt.Errorf("parsing feature level %q: %w", s, err)
	}
	return FeatureLevel{Major: ma, Minor: mi}, nil
}

// AtLeast reports whether l >= o.
func (l FeatureLevel) AtLeast(o FeatureLevel) bool {
	return l.Major > o.Major || (l.Major == o.Major && l.Minor >= o.Minor)
}

func (l FeatureLevel) String() string {
	return fmt.Sprintf("%d.%d", l.Major, l.Minor)
}

// Options configures a Device.
type Options struct {
	Workers          int   // 0 = GOMAXPROCS
	MaxWorkgroupSize int   // 0 = DefaultMaxWorkgroupSize
	MemoryLimit      int64 // bytes, 0 = unlimited
	FeatureLevel     FeatureLevel
}

// DefaultOptions returns options for an unlimited device at ComputeLevel.
func DefaultOptions() Options {
	return Options{
		MaxWorkgroupSize: DefaultMaxWorkgroupSize,
		FeatureLevel:     ComputeLevel,
	}
}

// Device owns buffers and executes kernels.
type Device struct {
	opts      Options
	allocated atomic.Int64
	pool      *workerPool
	closed    atomic.Bool
}

// New creates a device. Workers are started on first use.
func New(opts Options) *Device {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.MaxWorkgroupSize <= 0 {
		opts.MaxWorkgroupSize = DefaultMaxWorkgroupSize
	}
	return &Device{
		opts: opts,
		pool: newWorkerPool(opts.Workers),
	}
}

// Options returns the effective device options.
func (d *Device) Options() Options {
	return d.opts
}

// CheckCapabilities verifies the device can run compute kernels.
func (d *Device) CheckCapabilities() error {
	if !d.opts.FeatureLevel.AtLeast(ComputeLevel) {
		return fmt.Errorf("%w: compute requires %s+, detected %s",
			ErrUnsupported, ComputeLevel, d.opts.FeatureLevel)
	}
	return nil
}

// Allocated returns the number of bytes currently held by live buffers.
func (d *Device) Allocated() int64 {
	return d.allocated.Load()
}

// reserve accounts n bytes against the memory limit.
func (d *Device) reserve(n int64) error {
	for {
		cur := d.allocated.Load()
		next := cur + n
		if d.opts.MemoryLimit > 0 && next > d.opts.MemoryLimit {
			return fmt.Errorf("%w: requested %d bytes, %d of %d in use",
				ErrOutOfMemory, n, cur, d.opts.MemoryLimit)
		}
		if d.allocated.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

func (d *Device) unreserve(n int64) {
	d.allocated.Add(-n)
}

// NewQueue creates an empty command queue on the device.
func (d *Device) NewQueue() *Queue {
	return &Queue{dev: d, bindings: make(map[int]Buffer, MaxBindings)}
}

// Close stops the worker pool. Buffers stay valid for host reads.
func (d *Device) Close() {
	if d.closed.Swap(true) {
		return
	}
	d.pool.stop()
}

package telemetry

import (
	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/grid"
)

// Collector emits FlockStats once per window of simulated time.
type Collector struct {
	windowDurationSec float64
	bounds            grid.Bounds

	// Current window tracking
	windowStartSec float64
	windows        int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64, bounds grid.Bounds) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	return &Collector{
		windowDurationSec: windowDurationSec,
		bounds:            bounds,
	}
}

// ShouldFlush returns true once the current window has elapsed.
func (c *Collector) ShouldFlush(simTimeSec float64) bool {
	return simTimeSec-c.windowStartSec >= c.windowDurationSec
}

// Flush measures the snapshot and starts the next window.
func (c *Collector) Flush(frame uint64, simTimeSec float64, ps []device.Particle) FlockStats {
	stats := ComputeFlockStats(ps, c.bounds)
	stats.Frame = frame
	stats.SimTimeSec = simTimeSec

	c.windowStartSec = simTimeSec
	c.windows++
	return stats
}

// Windows returns the number of flushed windows.
func (c *Collector) Windows() int {
	return c.windows
}

// WindowDurationSec returns the window length in simulated seconds.
func (c *Collector) WindowDurationSec() float64 {
	return c.windowDurationSec
}

package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/engine"
	"github.com/pthm-cable/flock/kernels"
	"github.com/pthm-cable/flock/telemetry"
)

// Targets describe the flock the search is steering toward.
type Targets struct {
	Polarization float64 // mean |sum of unit velocities| / N
	Spread       float64 // RMS distance from the centroid, world units
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	particles   int
	frames      int
	seeds       []int64
	baseConfig  *config.Config
	targets     Targets
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(pv *ParamVector, particles, frames int, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      pv,
		particles:   particles,
		frames:      frames,
		seeds:       seeds,
		baseConfig:  baseCfg,
		targets:     targets,
		statsWindow: 1.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel, each on its own device.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			qualities[idx] = fe.computeQuality(fe.runSimulation(x, s))
		}(i, seed)
	}
	wg.Wait()

	quality := stat.Mean(qualities, nil)

	fe.mu.Lock()
	fe.lastQuality = quality
	fe.mu.Unlock()

	return -quality
}

// runSimulation executes one headless run and returns its stats windows.
// A run whose engine fails to initialize returns no windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.FlockStats {
	cfg := fe.baseConfig
	p := fe.params.Apply(cfg.Simulation, x)
	p.ParticleCount = fe.particles

	dev := device.New(cfg.DeviceOptions())
	defer dev.Close()

	eng := engine.New(dev, engine.Options{
		Bounds:       cfg.Derived.Bounds,
		MaxCellCount: cfg.Grid.MaxCellCount,
		Params:       p,
		Seed:         seed,
	})
	defer eng.Close()
	if err := eng.Init(kernels.Loader{}); err != nil {
		return nil
	}

	collector := telemetry.NewCollector(fe.statsWindow, cfg.Derived.Bounds)
	var windows []telemetry.FlockStats
	dt := cfg.Derived.FixedDT32
	for range fe.frames {
		eng.Frame(dt)
		if collector.ShouldFlush(eng.SimTime()) {
			windows = append(windows, collector.Flush(eng.Frames(), eng.SimTime(), eng.Snapshot()))
		}
	}
	return windows
}

// Quality component weights.
const (
	qualityWeightPolarization = 0.45
	qualityWeightSpread       = 0.30
	qualityWeightStability    = 0.15
	qualityWeightContainment  = 0.10

	qualityWarmupWindows = 2 // skip first N windows while the flock forms
)

// computeQuality scores a run in [0, 1] from its stats windows.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.FlockStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	pol := make([]float64, len(valid))
	spread := make([]float64, len(valid))
	var polSum, spreadSum, containSum float64
	for i, w := range valid {
		pol[i] = w.Polarization
		spread[i] = w.Spread

		polSum += gauss(w.Polarization, fe.targets.Polarization, 0.15)
		spreadSum += gauss(w.Spread, fe.targets.Spread, 0.35*fe.targets.Spread)
		if w.Particles > 0 {
			containSum += 1 - float64(w.OutOfBounds)/float64(w.Particles)
		}
	}
	n := float64(len(valid))

	// Stability: low coefficient of variation across windows.
	stabilityScore := 0.0
	if len(valid) >= 2 {
		cvPol := cv(pol)
		cvSpread := cv(spread)
		stabilityScore = math.Exp(-(cvPol*cvPol + cvSpread*cvSpread))
	}

	quality := qualityWeightPolarization*polSum/n +
		qualityWeightSpread*spreadSum/n +
		qualityWeightStability*stabilityScore +
		qualityWeightContainment*containSum/n

	return clamp01(quality)
}

// gauss is a unit-height bell around target.
func gauss(x, target, width float64) float64 {
	if width <= 0 {
		width = 1
	}
	d := (x - target) / width
	return math.Exp(-d * d)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

// Package main searches the flocking weights and radii with CMA-ES for
// parameters that hold a cohesive, aligned flock.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/flock/config"
)

type options struct {
	configPath string
	outputDir  string
	particles  int
	frames     int
	seeds      int
	maxEvals   int
	population int
	targets    Targets
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&o.outputDir, "output", "", "Output directory for results")
	flag.IntVar(&o.particles, "particles", 4000, "Particles per run")
	flag.IntVar(&o.frames, "frames", 900, "Frames per run")
	flag.IntVar(&o.seeds, "seeds", 2, "Seeds per evaluation")
	flag.IntVar(&o.maxEvals, "max-evals", 120, "Maximum number of evaluations")
	flag.IntVar(&o.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Float64Var(&o.targets.Polarization, "target-polarization", 0.7, "Target polarization in [0, 1]")
	flag.Float64Var(&o.targets.Spread, "target-spread", 4.0, "Target RMS spread in world units")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := run(o); err != nil {
		slog.Error("tuning failed", "error", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	baseCfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	pv := NewParamVector()
	seeds := make([]int64, o.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(pv, o.particles, o.frames, seeds, baseCfg, o.targets)

	tl, err := newTuneLog(filepath.Join(o.outputDir, "tune_log.csv"), pv)
	if err != nil {
		return err
	}

	popSize := o.population
	if popSize == 0 {
		popSize = 4 + 3*pv.Dim()/2
	}
	slog.Info("starting search",
		"params", pv.Dim(),
		"population", popSize,
		"max_evals", o.maxEvals,
		"seeds", o.seeds,
		"frames", o.frames,
		"particles", o.particles,
	)

	evals, best := 0, 1e9
	var bestRaw []float64
	var logErr error
	started := time.Now()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := pv.Clamp(pv.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			evals++
			if fitness < best {
				best, bestRaw = fitness, raw
			}
			if err := tl.write(evals, fitness, raw); err != nil && logErr == nil {
				logErr = err
			}

			elapsed := time.Since(started)
			eta := time.Duration(o.maxEvals-evals) * (elapsed / time.Duration(evals))
			slog.Info("evaluated",
				"eval", evals,
				"quality", evaluator.LastQuality(),
				"best", -best,
				"elapsed", formatDuration(elapsed),
				"eta", formatDuration(eta),
			)
			return fitness
		},
	}

	// Evaluations run one at a time; each spreads its seeds over goroutines.
	settings := &optimize.Settings{FuncEvaluations: o.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}

	initX := pv.Normalize(pv.Extract(baseCfg.Simulation))
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimizer stopped", "error", err)
	}
	if err := errors.Join(logErr, tl.close()); err != nil {
		return err
	}

	if bestRaw == nil && result != nil {
		bestRaw = pv.Clamp(pv.Denormalize(result.X))
	}
	if bestRaw == nil {
		return errors.New("no evaluations completed")
	}

	attrs := []any{"evals", evals, "quality", -best, "elapsed", formatDuration(time.Since(started))}
	for i, spec := range pv.Specs {
		attrs = append(attrs, spec.Name, bestRaw[i])
	}
	slog.Info("search complete", attrs...)

	baseCfg.Simulation = pv.Apply(baseCfg.Simulation, bestRaw)
	outPath := filepath.Join(o.outputDir, "best_config.yaml")
	if err := baseCfg.WriteYAML(outPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("best config saved", "path", outPath)
	return nil
}

// formatDuration renders d as 1h02m05s, or 2m05s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

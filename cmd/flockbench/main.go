// Package main runs the engine headless at several particle counts and
// records per-phase frame timing for each.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/engine"
	"github.com/pthm-cable/flock/kernels"
	"github.com/pthm-cable/flock/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	countsFlag := flag.String("counts", "1000,10000,30000,60000,100000", "Comma-separated particle counts")
	frames := flag.Int("frames", 300, "Measured frames per count")
	warmup := flag.Int("warmup", 30, "Unmeasured frames per count")
	seed := flag.Int64("seed", 1, "RNG seed")
	outPath := flag.String("output", "", "CSV output file (empty = stdout)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := run(*configPath, *countsFlag, *frames, *warmup, *seed, *outPath); err != nil {
		slog.Error("benchmark failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, countsFlag string, frames, warmup int, seed int64, outPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	counts, err := parseCounts(countsFlag)
	if err != nil {
		return err
	}
	if frames < 1 {
		return fmt.Errorf("frames must be positive, got %d", frames)
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	dev := device.New(cfg.DeviceOptions())
	defer dev.Close()

	rows := make([]telemetry.PerfStatsCSV, 0, len(counts))
	for _, n := range counts {
		row, err := measure(dev, cfg, n, frames, warmup, seed)
		if err != nil {
			return fmt.Errorf("count %d: %w", n, err)
		}
		slog.Info("measured",
			"particles", row.Particles,
			"avg_frame_us", row.AvgFrameUS,
			"frames_per_sec", row.FramesPerSec,
			"step_pct", row.StepPct,
		)
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(rows, out); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// measure runs one engine at n particles and returns its timing row.
func measure(dev *device.Device, cfg *config.Config, n, frames, warmup int, seed int64) (telemetry.PerfStatsCSV, error) {
	p := cfg.Simulation
	p.ParticleCount = n

	// The ring holds exactly the measured frames; warmup samples are
	// overwritten before Stats is read.
	perf := telemetry.NewPerfCollector(frames)
	eng := engine.New(dev, engine.Options{
		Bounds:       cfg.Derived.Bounds,
		MaxCellCount: cfg.Grid.MaxCellCount,
		Params:       p,
		Seed:         seed,
		Perf:         perf,
	})
	defer eng.Close()

	if err := eng.Init(kernels.Loader{}); err != nil {
		return telemetry.PerfStatsCSV{}, err
	}
	dt := cfg.Derived.FixedDT32
	for range warmup + frames {
		eng.Frame(dt)
	}
	return perf.Stats().ToCSV(eng.Frames(), eng.ParticleCount()), nil
}

// parseCounts parses "1000,10000" into a list of positive counts.
func parseCounts(s string) ([]int, error) {
	var counts []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("parsing count %q: %w", field, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("count must be positive, got %d", n)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no particle counts given")
	}
	return counts, nil
}

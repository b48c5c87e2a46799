package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/grid"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	mean, std, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// Sample standard deviation of 0.1..1.0.
	if math.Abs(std-0.3028) > 0.001 {
		t.Errorf("std = %v, want ~0.3028", std)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
}

func TestComputeDistributionSmall(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDistribution(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}

	mean, std, _, p50, _ = ComputeDistribution([]float64{4})
	if mean != 4 || std != 0 || p50 != 4 {
		t.Errorf("single value: mean=%v std=%v p50=%v", mean, std, p50)
	}
}

func TestComputeFlockStats(t *testing.T) {
	bounds := grid.NewBounds([3]float32{-10, -10, -10}, [3]float32{10, 10, 10})

	tests := []struct {
		name         string
		ps           []device.Particle
		polarization float64
		centroid     [3]float64
		outOfBounds  int
	}{
		{
			name: "aligned",
			ps: []device.Particle{
				{Pos: [4]float32{1, 0, 0, 1}, Vel: [4]float32{2, 0, 0, 0}},
				{Pos: [4]float32{3, 0, 0, 1}, Vel: [4]float32{5, 0, 0, 0}},
			},
			polarization: 1,
			centroid:     [3]float64{2, 0, 0},
		},
		{
			name: "opposed",
			ps: []device.Particle{
				{Pos: [4]float32{0, 2, 0, 1}, Vel: [4]float32{0, 3, 0, 0}},
				{Pos: [4]float32{0, -2, 0, 1}, Vel: [4]float32{0, -3, 0, 0}},
			},
			polarization: 0,
		},
		{
			name: "outside",
			ps: []device.Particle{
				{Pos: [4]float32{0, 0, 11, 1}, Vel: [4]float32{1, 0, 0, 0}},
				{Pos: [4]float32{0, 0, 9, 1}, Vel: [4]float32{1, 0, 0, 0}},
			},
			polarization: 1,
			centroid:     [3]float64{0, 0, 10},
			outOfBounds:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeFlockStats(tt.ps, bounds)
			if s.Particles != len(tt.ps) {
				t.Errorf("particles = %d", s.Particles)
			}
			if math.Abs(s.Polarization-tt.polarization) > 1e-9 {
				t.Errorf("polarization = %v, want %v", s.Polarization, tt.polarization)
			}
			got := [3]float64{s.CentroidX, s.CentroidY, s.CentroidZ}
			for i := range got {
				if math.Abs(got[i]-tt.centroid[i]) > 1e-6 {
					t.Errorf("centroid = %v, want %v", got, tt.centroid)
					break
				}
			}
			if s.OutOfBounds != tt.outOfBounds {
				t.Errorf("out of bounds = %d, want %d", s.OutOfBounds, tt.outOfBounds)
			}
		})
	}
}

func TestComputeFlockStatsSpeedAndSpread(t *testing.T) {
	bounds := grid.NewBounds([3]float32{-10, -10, -10}, [3]float32{10, 10, 10})
	ps := []device.Particle{
		{Pos: [4]float32{-1, 0, 0, 1}, Vel: [4]float32{3, 4, 0, 0}},
		{Pos: [4]float32{1, 0, 0, 1}, Vel: [4]float32{0, 0, 1, 0}},
	}

	s := ComputeFlockStats(ps, bounds)
	if s.SpeedMax != 5 || s.SpeedMean != 3 {
		t.Errorf("speed max/mean = %v/%v, want 5/3", s.SpeedMax, s.SpeedMean)
	}
	if math.Abs(s.Spread-1) > 1e-9 {
		t.Errorf("spread = %v, want 1", s.Spread)
	}
}

func TestComputeFlockStatsEmpty(t *testing.T) {
	s := ComputeFlockStats(nil, grid.Bounds{})
	if s != (FlockStats{}) {
		t.Errorf("empty snapshot = %+v", s)
	}
}

func TestCollectorWindows(t *testing.T) {
	bounds := grid.NewBounds([3]float32{-10, -10, -10}, [3]float32{10, 10, 10})
	c := NewCollector(1.0, bounds)
	ps := []device.Particle{{Vel: [4]float32{1, 0, 0, 0}}}

	if c.ShouldFlush(0.5) {
		t.Error("window should not flush before it elapses")
	}
	if !c.ShouldFlush(1.0) {
		t.Error("window should flush once it elapses")
	}

	s := c.Flush(60, 1.0, ps)
	if s.Frame != 60 || s.SimTimeSec != 1.0 || s.Particles != 1 {
		t.Errorf("flushed %+v", s)
	}
	if c.ShouldFlush(1.5) || !c.ShouldFlush(2.0) {
		t.Error("next window should start at the flush time")
	}
	if c.Windows() != 1 {
		t.Errorf("windows = %d, want 1", c.Windows())
	}
}

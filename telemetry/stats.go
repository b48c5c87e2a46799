package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/grid"
)

// FlockStats summarizes one snapshot of the flock.
type FlockStats struct {
	Frame      uint64  `csv:"frame"`
	SimTimeSec float64 `csv:"sim_time"`
	Particles  int     `csv:"particles"`

	// Speed distribution
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Order parameter: |sum of unit headings| / N, 1 when all agree.
	Polarization float64 `csv:"polarization"`

	CentroidX float64 `csv:"centroid_x"`
	CentroidY float64 `csv:"centroid_y"`
	CentroidZ float64 `csv:"centroid_z"`
	Spread    float64 `csv:"spread"` // RMS distance from the centroid

	OutOfBounds int `csv:"out_of_bounds"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, sample std, and percentiles.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// ComputeFlockStats measures a particle snapshot. Frame and SimTimeSec are
// left for the caller.
func ComputeFlockStats(ps []device.Particle, bounds grid.Bounds) FlockStats {
	s := FlockStats{Particles: len(ps)}
	if len(ps) == 0 {
		return s
	}

	speeds := make([]float64, len(ps))
	var headingSum, posSum r3.Vec
	for i, p := range ps {
		vel := r3.Vec{X: float64(p.Vel[0]), Y: float64(p.Vel[1]), Z: float64(p.Vel[2])}
		pos := r3.Vec{X: float64(p.Pos[0]), Y: float64(p.Pos[1]), Z: float64(p.Pos[2])}

		speeds[i] = r3.Norm(vel)
		if speeds[i] > 0 {
			headingSum = r3.Add(headingSum, r3.Scale(1/speeds[i], vel))
		}
		posSum = r3.Add(posSum, pos)
		if !bounds.Contains(pos) {
			s.OutOfBounds++
		}
	}

	n := float64(len(ps))
	s.SpeedMean, s.SpeedStd, s.SpeedP10, s.SpeedP50, s.SpeedP90 = ComputeDistribution(speeds)
	s.SpeedMax = floats.Max(speeds)
	s.Polarization = r3.Norm(headingSum) / n

	centroid := r3.Scale(1/n, posSum)
	s.CentroidX, s.CentroidY, s.CentroidZ = centroid.X, centroid.Y, centroid.Z

	dist2 := make([]float64, len(ps))
	for i, p := range ps {
		d := r3.Sub(r3.Vec{X: float64(p.Pos[0]), Y: float64(p.Pos[1]), Z: float64(p.Pos[2])}, centroid)
		dist2[i] = r3.Dot(d, d)
	}
	s.Spread = math.Sqrt(floats.Sum(dist2) / n)

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s FlockStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("frame", s.Frame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("centroid_x", s.CentroidX),
		slog.Float64("centroid_y", s.CentroidY),
		slog.Float64("centroid_z", s.CentroidZ),
		slog.Float64("spread", s.Spread),
		slog.Int("out_of_bounds", s.OutOfBounds),
	)
}

// LogStats logs the flock stats using slog.
func (s FlockStats) LogStats() {
	slog.Info("stats",
		"frame", s.Frame,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_max", s.SpeedMax,
		"polarization", s.Polarization,
		"spread", s.Spread,
		"out_of_bounds", s.OutOfBounds,
	)
}

// Package params holds the simulation parameter record and its clamping rules.
package params

import (
	"math"
)

// Hard limits on the particle population.
const (
	MinParticles = 1
	MaxParticles = 100000
)

// rebuildRadiusEpsilon is the neighbor radius change that forces a grid rebuild.
const rebuildRadiusEpsilon = 1.0e-4

// ColorMode selects how the step kernel colors each particle.
type ColorMode int32

const (
	ColorSolid ColorMode = iota
	ColorHeading
	ColorSpeed
	ColorDensity
)

func (m ColorMode) String() string {
	switch m {
	case ColorSolid:
		return "solid"
	case ColorHeading:
		return "heading"
	case ColorSpeed:
		return "speed"
	case ColorDensity:
		return "density"
	default:
		return "unknown"
	}
}

// Shape selects the sprite drawn for each particle. Render-only.
type Shape int32

const (
	ShapeSquare Shape = iota
	ShapeCircle
	ShapeLine // screen-facing, aligned to velocity
	ShapeCube
)

func (s Shape) String() string {
	switch s {
	case ShapeSquare:
		return "square"
	case ShapeCircle:
		return "circle"
	case ShapeLine:
		return "line"
	case ShapeCube:
		return "cube"
	default:
		return "unknown"
	}
}

// Params holds every tunable of the flocking engine.
// Values are only meaningful after Clamp.
type Params struct {
	ParticleCount int `yaml:"particle_count"`

	NeighborRadius   float32 `yaml:"neighbor_radius"`
	SeparationRadius float32 `yaml:"separation_radius"`

	WeightSeparation float32 `yaml:"weight_separation"`
	WeightAlignment  float32 `yaml:"weight_alignment"`
	WeightCohesion   float32 `yaml:"weight_cohesion"`

	MinSpeed float32 `yaml:"min_speed"`
	MaxSpeed float32 `yaml:"max_speed"`
	MaxAccel float32 `yaml:"max_accel"`
	SimSpeed float32 `yaml:"sim_speed"` // time scale multiplier (1.0 = real-time)

	CenterAttraction float32 `yaml:"center_attraction"`
	BoundaryMargin   float32 `yaml:"boundary_margin"`
	BoundaryStrength float32 `yaml:"boundary_strength"`
	WrapBounds       bool    `yaml:"wrap_bounds"`

	// Rendering
	PointSize     float32 `yaml:"point_size"`
	AlphaMul      float32 `yaml:"alpha_mul"`
	ParticleShape Shape   `yaml:"particle_shape"`

	// Coloring
	ColorMode    ColorMode `yaml:"color_mode"`
	HueOffset    float32   `yaml:"hue_offset"`
	HueRange     float32   `yaml:"hue_range"`
	Saturation   float32   `yaml:"saturation"`
	Value        float32   `yaml:"value"`
	DensityCurve float32   `yaml:"density_curve"` // applied as pow(t, DensityCurve)
}

// Defaults returns the unclamped startup record.
// SeparationRadius is larger than NeighborRadius on purpose: Clamp pulls it down.
func Defaults() Params {
	return Params{
		ParticleCount:    60000,
		NeighborRadius:   1.34,
		SeparationRadius: 2.07,
		WeightSeparation: 1.85,
		WeightAlignment:  1.37,
		WeightCohesion:   0.5,
		MinSpeed:         1.0,
		MaxSpeed:         10.0,
		MaxAccel:         8.0,
		SimSpeed:         1.0,
		CenterAttraction: 0.3,
		BoundaryMargin:   5.0,
		BoundaryStrength: 10.0,
		WrapBounds:       false,
		PointSize:        1.0,
		AlphaMul:         0.65,
		ParticleShape:    ShapeCircle,
		ColorMode:        ColorHeading,
		HueOffset:        0.0,
		HueRange:         0.7,
		Saturation:       0.4,
		Value:            1.0,
		DensityCurve:     1.0,
	}
}

// Clamp returns a normalized copy of p. It never fails: out-of-range values
// are pulled into range. Dependent bounds use the already clamped values.
func Clamp(p Params) Params {
	p.ParticleCount = clampInt(p.ParticleCount, MinParticles, MaxParticles)

	p.NeighborRadius = clampf(p.NeighborRadius, 0.05, 50.0)
	p.SeparationRadius = clampf(p.SeparationRadius, 0.01, p.NeighborRadius)

	p.WeightSeparation = clampf(p.WeightSeparation, 0, 50)
	p.WeightAlignment = clampf(p.WeightAlignment, 0, 50)
	p.WeightCohesion = clampf(p.WeightCohesion, 0, 50)

	p.MinSpeed = clampf(p.MinSpeed, 0, 1000)
	p.MaxSpeed = clampf(p.MaxSpeed, min(max(p.MinSpeed+1.0e-3, 0.01), 1000), 1000)
	p.MaxAccel = clampf(p.MaxAccel, 0, 10000)
	p.SimSpeed = clampf(p.SimSpeed, 0.1, 2.0)

	p.CenterAttraction = clampf(p.CenterAttraction, 0, 1000)
	p.BoundaryMargin = clampf(p.BoundaryMargin, 0.01, 1000)
	p.BoundaryStrength = clampf(p.BoundaryStrength, 0, 10000)

	p.PointSize = clampf(p.PointSize, 1, 64)
	p.AlphaMul = clampf(p.AlphaMul, 0, 1)
	p.ParticleShape = Shape(clampInt(int(p.ParticleShape), int(ShapeSquare), int(ShapeCube)))

	p.ColorMode = ColorMode(clampInt(int(p.ColorMode), int(ColorSolid), int(ColorDensity)))
	p.HueOffset = clampf(p.HueOffset, 0, 1)
	p.HueRange = clampf(p.HueRange, 0, 1)
	p.Saturation = clampf(p.Saturation, 0, 1)
	p.Value = clampf(p.Value, 0, 1)
	p.DensityCurve = clampf(p.DensityCurve, 0.1, 8.0)

	return p
}

// NeedsRebuild reports whether moving from prev to next requires the grid
// and device buffers to be reallocated. prev should carry the radius the
// live grid was sized for. Both records must be clamped.
func NeedsRebuild(prev, next Params) bool {
	if prev.ParticleCount != next.ParticleCount {
		return true
	}
	return math.Abs(float64(next.NeighborRadius-prev.NeighborRadius)) > rebuildRadiusEpsilon
}

// clampf clamps v into [lo, hi]. NaN collapses to lo.
func clampf(v, lo, hi float32) float32 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package main

import (
	"github.com/pthm-cable/flock/params"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Particle count, speeds and rendering stay at the base config values.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "neighbor_radius", Path: "simulation.neighbor_radius", Min: 0.5, Max: 4.0, Default: 1.34},
			{Name: "separation_radius", Path: "simulation.separation_radius", Min: 0.1, Max: 2.0, Default: 1.0},
			{Name: "weight_separation", Path: "simulation.weight_separation", Min: 0, Max: 5, Default: 1.85},
			{Name: "weight_alignment", Path: "simulation.weight_alignment", Min: 0, Max: 5, Default: 1.37},
			{Name: "weight_cohesion", Path: "simulation.weight_cohesion", Min: 0, Max: 5, Default: 0.5},
			{Name: "max_accel", Path: "simulation.max_accel", Min: 1, Max: 40, Default: 8},
			{Name: "center_attraction", Path: "simulation.center_attraction", Min: 0, Max: 2, Default: 0.3},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Apply writes parameter values into a copy of p. Order must match Specs.
func (pv *ParamVector) Apply(p params.Params, values []float64) params.Params {
	c := pv.Clamp(values)
	p.NeighborRadius = float32(c[0])
	p.SeparationRadius = float32(c[1])
	p.WeightSeparation = float32(c[2])
	p.WeightAlignment = float32(c[3])
	p.WeightCohesion = float32(c[4])
	p.MaxAccel = float32(c[5])
	p.CenterAttraction = float32(c[6])
	return params.Clamp(p)
}

// Extract reads the current parameter values from p.
func (pv *ParamVector) Extract(p params.Params) []float64 {
	return []float64{
		float64(p.NeighborRadius),
		float64(p.SeparationRadius),
		float64(p.WeightSeparation),
		float64(p.WeightAlignment),
		float64(p.WeightCohesion),
		float64(p.MaxAccel),
		float64(p.CenterAttraction),
	}
}

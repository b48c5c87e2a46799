// Package kernels holds the three compute stages of the flocking engine
// (clear, build, step) as device kernels, plus the binding slots and
// uniform names they share with the host.
package kernels

import (
	"fmt"

	"github.com/pthm-cable/flock/device"
)

// WorkgroupSize is the local size of every stage.
const WorkgroupSize = 256

// Storage binding slots.
const (
	SlotParticlesIn  = 0
	SlotParticlesOut = 1
	SlotCellHeads    = 2
	SlotNextIndex    = 3
)

// Uniform names.
const (
	UCellCount        = "u_cellCount"
	UParticleCount    = "u_particleCount"
	UGridDims         = "u_gridDims"
	UWorldMin         = "u_worldMin"
	UWorldMax         = "u_worldMax"
	UCellSize         = "u_cellSize"
	UDt               = "u_dt"
	UNeighborRadius   = "u_neighborRadius"
	USeparationRadius = "u_separationRadius"
	UWeightSeparation = "u_weightSeparation"
	UWeightAlignment  = "u_weightAlignment"
	UWeightCohesion   = "u_weightCohesion"
	UMinSpeed         = "u_minSpeed"
	UMaxSpeed         = "u_maxSpeed"
	UMaxAccel         = "u_maxAccel"
	UCenterAttraction = "u_centerAttraction"
	UBoundaryMargin   = "u_boundaryMargin"
	UBoundaryStrength = "u_boundaryStrength"
	UWrapBounds       = "u_wrapBounds"
	UColorMode        = "u_colorMode"
	UHueOffset        = "u_hueOffset"
	UHueRange         = "u_hueRange"
	USaturation       = "u_saturation"
	UValue            = "u_value"
	UDensityCurve     = "u_densityCurve"
)

// gridUniforms are read by every stage that maps positions to cells.
var gridUniforms = []device.UniformDecl{
	{Name: UCellCount, Type: device.UniformInt},
	{Name: UGridDims, Type: device.UniformIVec3},
	{Name: UWorldMin, Type: device.UniformVec3},
	{Name: UCellSize, Type: device.UniformFloat},
}

// Set is the compiled pipeline.
type Set struct {
	Clear *device.Program
	Build *device.Program
	Step  *device.Program
}

// Programs returns the three programs in dispatch order.
func (s Set) Programs() []*device.Program {
	return []*device.Program{s.Clear, s.Build, s.Step}
}

// Load compiles all three stages. On failure the error names the stage and
// carries the device's compile log.
func Load(dev *device.Device) (Set, error) {
	var s Set
	stages := []struct {
		dst    **device.Program
		kernel device.Kernel
	}{
		{&s.Clear, ClearKernel()},
		{&s.Build, BuildKernel()},
		{&s.Step, StepKernel()},
	}
	for _, st := range stages {
		p, err := dev.Compile(st.kernel)
		if err != nil {
			return Set{}, fmt.Errorf("loading %s kernel: %w", st.kernel.Name, err)
		}
		*st.dst = p
	}
	return s, nil
}

// Loader is the default kernel source.
type Loader struct{}

// Load compiles the built-in stages.
func (Loader) Load(dev *device.Device) (Set, error) {
	return Load(dev)
}

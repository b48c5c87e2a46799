package kernels

import (
	"github.com/pthm-cable/flock/grid"
	"github.com/pthm-cable/flock/params"
)

// Frame is everything the host uploads before a frame's dispatches.
type Frame struct {
	Params        params.Params
	Grid          grid.Spec
	Bounds        grid.Bounds
	ParticleCount int
	Dt            float32 // host-clamped frame time, before simSpeed
}

// Upload sets every uniform on every stage. Stages ignore the names they
// do not declare, so one upload serves all three.
func (s Set) Upload(f Frame) {
	p := f.Params
	for _, prog := range s.Programs() {
		if prog == nil {
			continue
		}
		prog.SetInt(UCellCount, int32(f.Grid.CellCount))
		prog.SetInt(UParticleCount, int32(f.ParticleCount))
		prog.SetIVec3(UGridDims, f.Grid.Dims)
		prog.SetVec3(UWorldMin, f.Bounds.MinF32())
		prog.SetVec3(UWorldMax, f.Bounds.MaxF32())
		prog.SetFloat(UCellSize, f.Grid.CellSize)

		prog.SetFloat(UDt, f.Dt*p.SimSpeed)
		prog.SetFloat(UNeighborRadius, p.NeighborRadius)
		prog.SetFloat(USeparationRadius, p.SeparationRadius)
		prog.SetFloat(UWeightSeparation, p.WeightSeparation)
		prog.SetFloat(UWeightAlignment, p.WeightAlignment)
		prog.SetFloat(UWeightCohesion, p.WeightCohesion)
		prog.SetFloat(UMinSpeed, p.MinSpeed)
		prog.SetFloat(UMaxSpeed, p.MaxSpeed)
		prog.SetFloat(UMaxAccel, p.MaxAccel)
		prog.SetFloat(UCenterAttraction, p.CenterAttraction)
		prog.SetFloat(UBoundaryMargin, p.BoundaryMargin)
		prog.SetFloat(UBoundaryStrength, p.BoundaryStrength)
		prog.SetBool(UWrapBounds, p.WrapBounds)

		prog.SetInt(UColorMode, int32(p.ColorMode))
		prog.SetFloat(UHueOffset, p.HueOffset)
		prog.SetFloat(UHueRange, p.HueRange)
		prog.SetFloat(USaturation, p.Saturation)
		prog.SetFloat(UValue, p.Value)
		prog.SetFloat(UDensityCurve, p.DensityCurve)
	}
}

package kernels

import (
	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/grid"
)

// ClearKernel resets every cell head to -1.
func ClearKernel() device.Kernel {
	return device.Kernel{
		Name:          "clear_grid",
		WorkgroupSize: WorkgroupSize,
		Uniforms:      []device.UniformDecl{{Name: UCellCount, Type: device.UniformInt}},
		Bindings: []device.BindingDecl{
			{Slot: SlotCellHeads, Kind: device.BindIndices, Name: "cellHeads"},
		},
		Entry: clearEntry,
	}
}

func clearEntry(env *device.Env) device.Invocation {
	heads := env.Indices(SlotCellHeads)
	n := boundedCount(env.Int(UCellCount), len(heads))
	return func(id uint32) {
		if id >= n {
			return
		}
		heads[id] = -1
	}
}

// boundedCount clamps a uniform count to [0, limit].
func boundedCount(v int32, limit int) uint32 {
	if v <= 0 {
		return 0
	}
	return uint32(min(int(v), limit))
}

// gridFromEnv rebuilds the grid description from uniforms. ok is false
// when the uniforms describe an empty grid.
func gridFromEnv(env *device.Env) (g grid.Spec, ok bool) {
	g = grid.Spec{
		Min:       env.Vec3(UWorldMin),
		CellSize:  env.Float(UCellSize),
		Dims:      env.IVec3(UGridDims),
		CellCount: int(env.Int(UCellCount)),
	}
	if g.CellSize <= 0 || g.CellCount <= 0 {
		return g, false
	}
	for _, d := range g.Dims {
		if d < 1 {
			return g, false
		}
	}
	return g, int(g.Dims[0])*int(g.Dims[1])*int(g.Dims[2]) == g.CellCount
}

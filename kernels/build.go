package kernels

import (
	"slices"
	"sync/atomic"

	"github.com/pthm-cable/flock/device"
)

// BuildKernel pushes each particle onto its cell's list. The push is an
// atomic exchange on the cell head, so concurrent inserts into the same
// cell never lose an entry. List order is whatever the scheduler produced.
func BuildKernel() device.Kernel {
	return device.Kernel{
		Name:          "build_grid",
		WorkgroupSize: WorkgroupSize,
		Uniforms: append(slices.Clone(gridUniforms),
			device.UniformDecl{Name: UParticleCount, Type: device.UniformInt},
		),
		Bindings: []device.BindingDecl{
			{Slot: SlotParticlesIn, Kind: device.BindParticles, Name: "particlesIn"},
			{Slot: SlotCellHeads, Kind: device.BindIndices, Name: "cellHeads"},
			{Slot: SlotNextIndex, Kind: device.BindIndices, Name: "nextIndex"},
		},
		Entry: buildEntry,
	}
}

func buildEntry(env *device.Env) device.Invocation {
	in := env.Particles(SlotParticlesIn)
	heads := env.Indices(SlotCellHeads)
	next := env.Indices(SlotNextIndex)
	g, ok := gridFromEnv(env)
	if !ok || len(heads) < g.CellCount {
		return func(uint32) {}
	}
	n := boundedCount(env.Int(UParticleCount), min(len(in), len(next)))

	return func(id uint32) {
		if id >= n {
			return
		}
		p := &in[id].Pos
		cell := g.CellOf(p[0], p[1], p[2])
		next[id] = atomic.SwapInt32(&heads[cell], int32(id))
	}
}

package kernels

import (
	"slices"

	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/grid"
	"github.com/pthm-cable/flock/params"
)

// separationFloor skips separation from coincident neighbors.
const separationFloor = 1e-8

// StepKernel integrates one frame: flocking forces from the 3x3x3 cell
// neighborhood (widened across a narrow wrap seam), center attraction,
// boundary handling, clamps, recolor.
// It reads particlesIn and writes particlesOut.
func StepKernel() device.Kernel {
	uniforms := append(slices.Clone(gridUniforms),
		device.UniformDecl{Name: UParticleCount, Type: device.UniformInt},
		device.UniformDecl{Name: UWorldMax, Type: device.UniformVec3},
		device.UniformDecl{Name: UDt, Type: device.UniformFloat},
		device.UniformDecl{Name: UNeighborRadius, Type: device.UniformFloat},
		device.UniformDecl{Name: USeparationRadius, Type: device.UniformFloat},
		device.UniformDecl{Name: UWeightSeparation, Type: device.UniformFloat},
		device.UniformDecl{Name: UWeightAlignment, Type: device.UniformFloat},
		device.UniformDecl{Name: UWeightCohesion, Type: device.UniformFloat},
		device.UniformDecl{Name: UMinSpeed, Type: device.UniformFloat},
		device.UniformDecl{Name: UMaxSpeed, Type: device.UniformFloat},
		device.UniformDecl{Name: UMaxAccel, Type: device.UniformFloat},
		device.UniformDecl{Name: UCenterAttraction, Type: device.UniformFloat},
		device.UniformDecl{Name: UBoundaryMargin, Type: device.UniformFloat},
		device.UniformDecl{Name: UBoundaryStrength, Type: device.UniformFloat},
		device.UniformDecl{Name: UWrapBounds, Type: device.UniformInt},
		device.UniformDecl{Name: UColorMode, Type: device.UniformInt},
		device.UniformDecl{Name: UHueOffset, Type: device.UniformFloat},
		device.UniformDecl{Name: UHueRange, Type: device.UniformFloat},
		device.UniformDecl{Name: USaturation, Type: device.UniformFloat},
		device.UniformDecl{Name: UValue, Type: device.UniformFloat},
		device.UniformDecl{Name: UDensityCurve, Type: device.UniformFloat},
	)
	return device.Kernel{
		Name:          "step",
		WorkgroupSize: WorkgroupSize,
		Uniforms:      uniforms,
		Bindings: []device.BindingDecl{
			{Slot: SlotParticlesIn, Kind: device.BindParticles, Name: "particlesIn"},
			{Slot: SlotParticlesOut, Kind: device.BindParticles, Name: "particlesOut"},
			{Slot: SlotCellHeads, Kind: device.BindIndices, Name: "cellHeads"},
			{Slot: SlotNextIndex, Kind: device.BindIndices, Name: "nextIndex"},
		},
		Entry: stepEntry,
	}
}

// stepper holds one dispatch's uniforms and bindings.
type stepper struct {
	in, out []device.Particle
	heads   []int32
	next    []int32
	n       uint32
	grid    grid.Spec

	dt               float32
	neighborRadius   float32
	separationRadius float32
	wSep, wAli, wCoh float32
	minSpeed         float32
	maxSpeed         float32
	maxAccel         float32
	centerAttraction float32
	boundaryMargin   float32
	boundaryStrength float32
	wrap             bool

	worldMin, worldMax vec3
	extent, center     vec3
	narrowSeam         [3]bool

	color colorParams
}

func stepEntry(env *device.Env) device.Invocation {
	g, ok := gridFromEnv(env)
	s := &stepper{
		in:    env.Particles(SlotParticlesIn),
		out:   env.Particles(SlotParticlesOut),
		heads: env.Indices(SlotCellHeads),
		next:  env.Indices(SlotNextIndex),
		grid:  g,

		dt:               env.Float(UDt),
		neighborRadius:   env.Float(UNeighborRadius),
		separationRadius: env.Float(USeparationRadius),
		wSep:             env.Float(UWeightSeparation),
		wAli:             env.Float(UWeightAlignment),
		wCoh:             env.Float(UWeightCohesion),
		minSpeed:         env.Float(UMinSpeed),
		maxSpeed:         env.Float(UMaxSpeed),
		maxAccel:         env.Float(UMaxAccel),
		centerAttraction: env.Float(UCenterAttraction),
		boundaryMargin:   env.Float(UBoundaryMargin),
		boundaryStrength: env.Float(UBoundaryStrength),
		wrap:             env.Bool(UWrapBounds),
		worldMin:         env.Vec3(UWorldMin),
		worldMax:         env.Vec3(UWorldMax),
	}
	s.color = colorParams{
		mode:         params.ColorMode(env.Int(UColorMode)),
		hueOffset:    env.Float(UHueOffset),
		hueRange:     env.Float(UHueRange),
		saturation:   env.Float(USaturation),
		value:        env.Float(UValue),
		densityCurve: env.Float(UDensityCurve),
		minSpeed:     s.minSpeed,
		maxSpeed:     s.maxSpeed,
	}
	s.extent = s.worldMax.sub(s.worldMin)
	s.center = s.worldMin.add(s.worldMax).scale(0.5)
	if s.wrap {
		for axis := 0; axis < 3; axis++ {
			s.narrowSeam[axis] = g.LastCellWidth(axis, s.extent[axis]) < s.neighborRadius
		}
	}

	if !ok || len(s.heads) < g.CellCount {
		return func(uint32) {}
	}
	s.n = boundedCount(env.Int(UParticleCount), min(len(s.in), len(s.out), len(s.next)))
	return s.run
}

func (s *stepper) run(id uint32) {
	if id >= s.n {
		return
	}
	s.out[id] = s.integrate(id)
}

// integrate computes the next state of particle id.
func (s *stepper) integrate(id uint32) device.Particle {
	self := &s.in[id]
	p := xyz(self.Pos)
	v := xyz(self.Vel)

	sep, aliSum, cohSum, neighbors := s.gather(id, p)

	acc := sep.scale(s.wSep)
	if neighbors > 0 {
		inv := 1 / float32(neighbors)
		acc = acc.add(aliSum.scale(inv).sub(v).scale(s.wAli))
		acc = acc.add(cohSum.scale(inv).scale(s.wCoh))
	}
	acc = acc.add(s.center.sub(p).scale(s.centerAttraction))
	if !s.wrap {
		acc = acc.add(s.boundaryForce(p))
	}

	if a := acc.length(); a > s.maxAccel {
		acc = acc.scale(s.maxAccel / a)
	}

	v = v.add(acc.scale(s.dt))
	v = s.clampSpeed(v, xyz(self.Vel))
	p = p.add(v.scale(s.dt))

	if s.wrap {
		p = s.wrapPosition(p)
	} else {
		p, v = s.reflect(p, v)
	}

	return device.Particle{
		Pos:   xyzw(p, 1),
		Vel:   xyzw(v, 0),
		Color: s.color.shade(v, neighbors),
	}
}

// gather walks the neighboring cells of p and accumulates the separation
// vector, the neighbor velocity sum and the neighbor offset sum. Summation
// order follows list order, which the build stage leaves unspecified.
func (s *stepper) gather(id uint32, p vec3) (sep, velSum, offSum vec3, count int) {
	nr2 := s.neighborRadius * s.neighborRadius
	sr2 := s.separationRadius * s.separationRadius

	cx, cy, cz := s.grid.CellCoord(p[0], p[1], p[2])
	xs, nx := s.grid.NeighborCells(0, cx, s.wrap, s.narrowSeam[0])
	ys, ny := s.grid.NeighborCells(1, cy, s.wrap, s.narrowSeam[1])
	zs, nz := s.grid.NeighborCells(2, cz, s.wrap, s.narrowSeam[2])

	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				cell := s.grid.CellIndex(xs[ix], ys[iy], zs[iz])
				for j := s.heads[cell]; j >= 0 && uint32(j) < s.n; j = s.next[j] {
					if uint32(j) == id {
						continue
					}
					other := &s.in[j]
					off := xyz(other.Pos).sub(p)
					if s.wrap {
						off = s.minimumImage(off)
					}
					d2 := off.lengthSquared()
					if d2 > nr2 {
						continue
					}
					count++
					velSum = velSum.add(xyz(other.Vel))
					offSum = offSum.add(off)
					if d2 < sr2 && d2 > separationFloor {
						sep = sep.sub(off.scale(1 / d2))
					}
				}
			}
		}
	}
	return sep, velSum, offSum, count
}

// boundaryForce pushes inward from every face p is within the margin of,
// proportional to the penetration depth.
func (s *stepper) boundaryForce(p vec3) vec3 {
	var f vec3
	for axis := 0; axis < 3; axis++ {
		if d := p[axis] - s.worldMin[axis]; d < s.boundaryMargin {
			f[axis] += (s.boundaryMargin - d) * s.boundaryStrength
		}
		if d := s.worldMax[axis] - p[axis]; d < s.boundaryMargin {
			f[axis] -= (s.boundaryMargin - d) * s.boundaryStrength
		}
	}
	return f
}

// clampSpeed keeps |v| in [minSpeed, maxSpeed]. A zero velocity keeps the
// previous heading, or +X if that was zero too.
func (s *stepper) clampSpeed(v, prev vec3) vec3 {
	speed := v.length()
	if speed < 1e-6 {
		dir := vec3{1, 0, 0}
		if l := prev.length(); l >= 1e-6 {
			dir = prev.scale(1 / l)
		}
		return dir.scale(s.minSpeed)
	}
	clamped := clamp32(speed, s.minSpeed, s.maxSpeed)
	if clamped == speed {
		return v
	}
	return v.scale(clamped / speed)
}

// wrapPosition folds p back into the world box; the overshoot past one
// face reappears past the opposite face.
func (s *stepper) wrapPosition(p vec3) vec3 {
	for axis := 0; axis < 3; axis++ {
		if s.extent[axis] > 0 {
			p[axis] = s.worldMin[axis] + mod32(p[axis]-s.worldMin[axis], s.extent[axis])
		}
	}
	return p
}

// minimumImage maps an offset to its shortest periodic representative.
func (s *stepper) minimumImage(off vec3) vec3 {
	for axis := 0; axis < 3; axis++ {
		e := s.extent[axis]
		if e <= 0 {
			continue
		}
		if off[axis] > 0.5*e {
			off[axis] -= e
		} else if off[axis] < -0.5*e {
			off[axis] += e
		}
	}
	return off
}

// reflect mirrors a particle that crossed a face back inside and points
// the velocity component inward.
func (s *stepper) reflect(p, v vec3) (vec3, vec3) {
	for axis := 0; axis < 3; axis++ {
		lo, hi := s.worldMin[axis], s.worldMax[axis]
		if p[axis] < lo {
			p[axis] = lo + (lo - p[axis])
			if v[axis] < 0 {
				v[axis] = -v[axis]
			}
		} else if p[axis] > hi {
			p[axis] = hi - (p[axis] - hi)
			if v[axis] > 0 {
				v[axis] = -v[axis]
			}
		}
		p[axis] = clamp32(p[axis], lo, hi)
	}
	return p, v
}

// Package renderer draws the particle buffer and the world box.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/grid"
	"github.com/pthm-cable/flock/params"
)

const (
	// lineLength is the velocity streak length in units of point size.
	lineLength = 3.0
	// cubeScale converts point size (pixels) to a cube edge in world units.
	cubeScale = 0.03
)

// ParticleRenderer draws particles as screen-space sprites or world cubes.
type ParticleRenderer struct {
	boundsColor rl.Color
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{
		boundsColor: rl.Color{R: 70, G: 80, B: 100, A: 255},
	}
}

// Camera3D converts an orbit camera to a raylib camera.
func Camera3D(cam *camera.Orbit) rl.Camera3D {
	eye, target, up := cam.View()
	return rl.Camera3D{
		Position:   vec3(eye),
		Target:     vec3(target),
		Up:         vec3(up),
		Fovy:       camera.FovY,
		Projection: rl.CameraPerspective,
	}
}

// DrawBounds draws the world box outline.
func (r *ParticleRenderer) DrawBounds(cam *camera.Orbit, b grid.Bounds) {
	rl.BeginMode3D(Camera3D(cam))
	rl.DrawCubeWiresV(vec3(b.Center()), vec3(b.Extent()), r.boundsColor)
	rl.EndMode3D()
}

// Draw renders ps with the shape, size and alpha settings in p.
// ps is only read during the call.
func (r *ParticleRenderer) Draw(ps []device.Particle, cam *camera.Orbit, p params.Params) {
	if len(ps) == 0 {
		return
	}
	if p.ParticleShape == params.ShapeCube {
		r.drawCubes(ps, cam, p)
		return
	}

	pr := cam.Projector()
	size := p.PointSize
	half := size / 2
	for i := range ps {
		x, y, _, ok := pr.Project(position(&ps[i]))
		if !ok {
			continue
		}
		color := particleColor(ps[i].Color, p.AlphaMul)

		switch p.ParticleShape {
		case params.ShapeSquare:
			rl.DrawRectangleV(rl.Vector2{X: x - half, Y: y - half}, rl.Vector2{X: size, Y: size}, color)
		case params.ShapeCircle:
			rl.DrawCircleV(rl.Vector2{X: x, Y: y}, max(half, 0.5), color)
		case params.ShapeLine:
			tx, ty, ok := streakEnd(pr, &ps[i], x, y, size)
			if !ok {
				continue
			}
			rl.DrawLineEx(rl.Vector2{X: x, Y: y}, rl.Vector2{X: tx, Y: ty}, max(half, 1), color)
		}
	}
}

// drawCubes draws one small world-space cube per particle.
func (r *ParticleRenderer) drawCubes(ps []device.Particle, cam *camera.Orbit, p params.Params) {
	edge := p.PointSize * cubeScale
	size := rl.Vector3{X: edge, Y: edge, Z: edge}

	rl.BeginMode3D(Camera3D(cam))
	for i := range ps {
		pos := rl.Vector3{X: ps[i].Pos[0], Y: ps[i].Pos[1], Z: ps[i].Pos[2]}
		rl.DrawCubeV(pos, size, particleColor(ps[i].Color, p.AlphaMul))
	}
	rl.EndMode3D()
}

// streakEnd projects the tip of a velocity-aligned streak starting at the
// particle's screen position (x, y).
func streakEnd(pr camera.Projector, pt *device.Particle, x, y, size float32) (float32, float32, bool) {
	v := r3.Vec{X: float64(pt.Vel[0]), Y: float64(pt.Vel[1]), Z: float64(pt.Vel[2])}
	if r3.Norm2(v) < 1e-12 {
		return x, y, false
	}
	tx, ty, _, ok := pr.Project(r3.Add(position(pt), r3.Scale(0.05, r3.Unit(v))))
	if !ok {
		return x, y, false
	}
	// Rescale the projected direction to a fixed pixel length.
	dx, dy := tx-x, ty-y
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l < 1e-6 {
		return x, y, false
	}
	k := lineLength * size / l
	return x + dx*k, y + dy*k, true
}

func position(p *device.Particle) r3.Vec {
	return r3.Vec{X: float64(p.Pos[0]), Y: float64(p.Pos[1]), Z: float64(p.Pos[2])}
}

func particleColor(c [4]float32, alphaMul float32) rl.Color {
	return rl.Color{
		R: unit8(c[0]),
		G: unit8(c[1]),
		B: unit8(c[2]),
		A: unit8(c[3] * alphaMul),
	}
}

func unit8(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

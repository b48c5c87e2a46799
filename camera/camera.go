// Package camera provides an orbit camera for viewing the simulation box.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultDistance is the starting eye distance from the target.
	DefaultDistance = 18.0
	// MinDistance and MaxDistance bound the zoom.
	MinDistance = 2.0
	MaxDistance = 200.0

	// zoomStep scales one wheel notch into a distance factor.
	zoomStep = 0.15
	// panScale converts pixels to world units per unit of distance.
	panScale = 0.01
	// rotateScale converts pixels to radians.
	rotateScale = 0.005
	// maxPitch keeps the eye off the poles so the up vector stays valid.
	maxPitch = 1.55

	// FovY is the vertical field of view in degrees.
	FovY = 60.0
	// Near and Far clip distances along the view axis.
	Near = 0.1
	Far  = 500.0
)

// Orbit rotates the eye around a target point.
// Left-drag orbits, right-drag pans in the view plane, the wheel zooms.
type Orbit struct {
	// Target is the point the camera looks at before panning.
	Target r3.Vec

	// Yaw rotates around +Y, Pitch tilts toward +Y (radians).
	Yaw, Pitch float64

	// Distance from the panned target to the eye.
	Distance float64

	// PanX, PanY move the scene in the view plane (world units).
	PanX, PanY float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32
}

// New creates a camera looking at target from DefaultDistance along +Z.
func New(viewportW, viewportH float32, target r3.Vec) *Orbit {
	return &Orbit{
		Target:    target,
		Distance:  DefaultDistance,
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
}

// Rotate applies a left-drag of (dx, dy) pixels.
func (o *Orbit) Rotate(dx, dy float32) {
	o.Yaw = math.Remainder(o.Yaw-float64(dx)*rotateScale, 2*math.Pi)
	o.Pitch = clamp(o.Pitch+float64(dy)*rotateScale, -maxPitch, maxPitch)
}

// Pan applies a right-drag of (dx, dy) pixels. Screen y grows downward.
// The step grows with distance so panning feels the same at any zoom.
func (o *Orbit) Pan(dx, dy float32) {
	scale := panScale * o.Distance
	o.PanX += float64(dx) * scale
	o.PanY -= float64(dy) * scale
}

// Zoom applies wheel notches; positive moves closer.
func (o *Orbit) Zoom(wheel float32) {
	o.SetDistance(o.Distance * (1 - zoomStep*float64(wheel)))
}

// SetDistance sets the eye distance, clamped to [MinDistance, MaxDistance].
func (o *Orbit) SetDistance(d float64) {
	o.Distance = clamp(d, MinDistance, MaxDistance)
}

// Resize updates viewport dimensions.
func (o *Orbit) Resize(viewportW, viewportH float32) {
	o.ViewportW = viewportW
	o.ViewportH = viewportH
}

// Aspect returns the viewport aspect ratio, 1 for a degenerate viewport.
func (o *Orbit) Aspect() float32 {
	if o.ViewportW <= 0 || o.ViewportH <= 0 {
		return 1
	}
	return o.ViewportW / o.ViewportH
}

// Reset returns the camera to the default orientation and distance.
func (o *Orbit) Reset() {
	o.Yaw, o.Pitch = 0, 0
	o.PanX, o.PanY = 0, 0
	o.Distance = DefaultDistance
}

// View returns the eye position, the panned look-at point and the up vector.
func (o *Orbit) View() (eye, target, up r3.Vec) {
	dir := o.direction()
	right, camUp := o.basis(dir)

	// Moving the scene by +pan is moving the camera by -pan.
	target = r3.Sub(o.Target, r3.Add(r3.Scale(o.PanX, right), r3.Scale(o.PanY, camUp)))
	eye = r3.Add(target, r3.Scale(o.Distance, dir))
	return eye, target, camUp
}

// Projector maps world points to screen pixels for one camera pose.
type Projector struct {
	eye, right, up, forward r3.Vec
	focal                   float64 // 1 / tan(fovY/2)
	aspect                  float64
	w, h                    float64
}

// Projector snapshots the current pose and viewport.
func (o *Orbit) Projector() Projector {
	eye, target, up := o.View()
	forward := r3.Unit(r3.Sub(target, eye))
	return Projector{
		eye:     eye,
		right:   r3.Cross(forward, up),
		up:      up,
		forward: forward,
		focal:   1 / math.Tan(FovY*math.Pi/360),
		aspect:  float64(o.Aspect()),
		w:       float64(o.ViewportW),
		h:       float64(o.ViewportH),
	}
}

// Project returns the screen position of p and its distance along the view
// axis. ok is false when p lies outside the near/far range.
func (pr Projector) Project(p r3.Vec) (x, y float32, depth float64, ok bool) {
	d := r3.Sub(p, pr.eye)
	depth = r3.Dot(d, pr.forward)
	if depth < Near || depth > Far {
		return 0, 0, depth, false
	}
	ndcX := r3.Dot(d, pr.right) * pr.focal / (pr.aspect * depth)
	ndcY := r3.Dot(d, pr.up) * pr.focal / depth
	x = float32((ndcX + 1) * 0.5 * pr.w)
	y = float32((1 - ndcY) * 0.5 * pr.h)
	return x, y, depth, true
}

// direction is the unit vector from the target toward the eye.
func (o *Orbit) direction() r3.Vec {
	cp := math.Cos(o.Pitch)
	return r3.Vec{
		X: cp * math.Sin(o.Yaw),
		Y: math.Sin(o.Pitch),
		Z: cp * math.Cos(o.Yaw),
	}
}

// basis returns the view-plane right and up vectors for a view direction.
func (o *Orbit) basis(dir r3.Vec) (right, up r3.Vec) {
	forward := r3.Scale(-1, dir)
	right = r3.Unit(r3.Cross(forward, r3.Vec{Y: 1}))
	up = r3.Cross(right, forward)
	return right, up
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

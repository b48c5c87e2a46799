package kernels

import "math"

// vec3 is the kernels' float32 vector. Device math stays in single
// precision like the shader it stands in for.
type vec3 [3]float32

func (a vec3) add(b vec3) vec3        { return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a vec3) sub(b vec3) vec3        { return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a vec3) scale(s float32) vec3   { return vec3{a[0] * s, a[1] * s, a[2] * s} }
func (a vec3) dot(b vec3) float32     { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func (a vec3) length() float32        { return sqrt32(a.dot(a)) }
func (a vec3) lengthSquared() float32 { return a.dot(a) }

func xyz(v [4]float32) vec3 { return vec3{v[0], v[1], v[2]} }

func xyzw(v vec3, w float32) [4]float32 { return [4]float32{v[0], v[1], v[2], w} }

func sqrt32(v float32) float32 { return float32(math.Sqrt(float64(v))) }

// mod32 is a floored modulo: the result has the sign of m.
func mod32(v, m float32) float32 {
	r := float32(math.Mod(float64(v), float64(m)))
	if r < 0 {
		r += m
	}
	if r >= m {
		r = 0
	}
	return r
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

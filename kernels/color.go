package kernels

import (
	"math"

	"github.com/pthm-cable/flock/params"
)

// densityNorm is the neighbor count that maps to full density.
const densityNorm = 32

// colorParams are the coloring uniforms of the step stage.
type colorParams struct {
	mode         params.ColorMode
	hueOffset    float32
	hueRange     float32
	saturation   float32
	value        float32
	densityCurve float32
	minSpeed     float32
	maxSpeed     float32
}

// shade returns the RGBA color of a particle with velocity v and the given
// number of neighbors. The mode's scalar t in [0,1] drives the hue (except
// for heading mode, which uses the horizontal heading angle) and alpha.
func (c colorParams) shade(v vec3, neighbors int) [4]float32 {
	speed := v.length()
	speedT := float32(0)
	if c.maxSpeed > c.minSpeed {
		speedT = clamp32((speed-c.minSpeed)/(c.maxSpeed-c.minSpeed), 0, 1)
	}

	var hue, t float32
	switch c.mode {
	case params.ColorSolid:
		hue, t = c.hueOffset, 1
	case params.ColorHeading:
		angle := float32(math.Atan2(float64(v[2]), float64(v[0])))
		hue = c.hueOffset + c.hueRange*(angle/(2*math.Pi)+0.5)
		t = speedT
	case params.ColorSpeed:
		t = speedT
		hue = c.hueOffset + c.hueRange*t
	case params.ColorDensity:
		t = min(float32(neighbors)/densityNorm, 1)
		t = float32(math.Pow(float64(t), float64(c.densityCurve)))
		hue = c.hueOffset + c.hueRange*t
	}

	r, g, b := hsvToRGB(hue, c.saturation, c.value)
	return [4]float32{r, g, b, 0.35 + 0.65*t}
}

// hsvToRGB converts hue (wrapped to [0,1)), saturation and value to RGB.
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	h = mod32(h, 1) * 6
	i := int(h)
	f := h - float32(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

// SeedColor is the color given to freshly seeded particles, before the
// first step recolors them: rgb follows the absolute heading and alpha the
// normalized speed.
func SeedColor(heading [3]float32, speed, minSpeed, maxSpeed float32) [4]float32 {
	t := float32(0)
	if maxSpeed > minSpeed {
		t = clamp32((speed-minSpeed)/(maxSpeed-minSpeed), 0, 1)
	}
	abs := func(v float32) float32 { return float32(math.Abs(float64(v))) }
	return [4]float32{
		0.2 + 0.8*abs(heading[0]),
		0.2 + 0.8*abs(heading[1]),
		0.2 + 0.8*abs(heading[2]),
		0.35 + 0.65*t,
	}
}

package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/params"
)

// SliderDescriptor binds one slider to a Params field.
type SliderDescriptor struct {
	Label    string
	Min, Max float32
	Format   string
	Get      func(*params.Params) float32
	Set      func(*params.Params, float32)
}

// ParamSliders lists the panel sliders in display order.
var ParamSliders = []SliderDescriptor{
	{"Particles", 1, params.MaxParticles, "%.0f",
		func(p *params.Params) float32 { return float32(p.ParticleCount) },
		func(p *params.Params, v float32) { p.ParticleCount = int(v + 0.5) }},
	{"Neighbor radius", 0.1, 8, "%.2f",
		func(p *params.Params) float32 { return p.NeighborRadius },
		func(p *params.Params, v float32) { p.NeighborRadius = v }},
	{"Separation radius", 0.05, 4, "%.2f",
		func(p *params.Params) float32 { return p.SeparationRadius },
		func(p *params.Params, v float32) { p.SeparationRadius = v }},
	{"Separation", 0, 5, "%.2f",
		func(p *params.Params) float32 { return p.WeightSeparation },
		func(p *params.Params, v float32) { p.WeightSeparation = v }},
	{"Alignment", 0, 5, "%.2f",
		func(p *params.Params) float32 { return p.WeightAlignment },
		func(p *params.Params, v float32) { p.WeightAlignment = v }},
	{"Cohesion", 0, 5, "%.2f",
		func(p *params.Params) float32 { return p.WeightCohesion },
		func(p *params.Params, v float32) { p.WeightCohesion = v }},
	{"Min speed", 0, 10, "%.2f",
		func(p *params.Params) float32 { return p.MinSpeed },
		func(p *params.Params, v float32) { p.MinSpeed = v }},
	{"Max speed", 0.1, 20, "%.2f",
		func(p *params.Params) float32 { return p.MaxSpeed },
		func(p *params.Params, v float32) { p.MaxSpeed = v }},
	{"Max accel", 0, 80, "%.1f",
		func(p *params.Params) float32 { return p.MaxAccel },
		func(p *params.Params, v float32) { p.MaxAccel = v }},
	{"Sim speed", 0.1, 2, "%.2f",
		func(p *params.Params) float32 { return p.SimSpeed },
		func(p *params.Params, v float32) { p.SimSpeed = v }},
	{"Center pull", 0, 3, "%.2f",
		func(p *params.Params) float32 { return p.CenterAttraction },
		func(p *params.Params, v float32) { p.CenterAttraction = v }},
	{"Boundary margin", 0.05, 5, "%.2f",
		func(p *params.Params) float32 { return p.BoundaryMargin },
		func(p *params.Params, v float32) { p.BoundaryMargin = v }},
	{"Boundary strength", 0, 80, "%.1f",
		func(p *params.Params) float32 { return p.BoundaryStrength },
		func(p *params.Params, v float32) { p.BoundaryStrength = v }},
	{"Point size", 1, 8, "%.1f",
		func(p *params.Params) float32 { return p.PointSize },
		func(p *params.Params, v float32) { p.PointSize = v }},
	{"Alpha", 0, 1, "%.2f",
		func(p *params.Params) float32 { return p.AlphaMul },
		func(p *params.Params, v float32) { p.AlphaMul = v }},
	{"Hue offset", 0, 1, "%.2f",
		func(p *params.Params) float32 { return p.HueOffset },
		func(p *params.Params, v float32) { p.HueOffset = v }},
	{"Hue range", 0, 1, "%.2f",
		func(p *params.Params) float32 { return p.HueRange },
		func(p *params.Params, v float32) { p.HueRange = v }},
	{"Saturation", 0, 1, "%.2f",
		func(p *params.Params) float32 { return p.Saturation },
		func(p *params.Params, v float32) { p.Saturation = v }},
	{"Value", 0, 1, "%.2f",
		func(p *params.Params) float32 { return p.Value },
		func(p *params.Params, v float32) { p.Value = v }},
	{"Density curve", 0.1, 8, "%.2f",
		func(p *params.Params) float32 { return p.DensityCurve },
		func(p *params.Params, v float32) { p.DensityCurve = v }},
}

// ParamsPanel draws the parameter controls and reports edits as whole records.
type ParamsPanel struct {
	renderer  *Renderer
	x, y      int32
	width     int32
	collapsed bool
}

// NewParamsPanel creates an expanded panel at (x, y).
func NewParamsPanel(x, y, width int32) *ParamsPanel {
	return &ParamsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Collapsed reports whether only the title bar is shown.
func (p *ParamsPanel) Collapsed() bool {
	return p.collapsed
}

// Contains reports whether a screen point is over the panel, so camera
// drags can be ignored there.
func (p *ParamsPanel) Contains(x, y float32) bool {
	h := p.height()
	return x >= float32(p.x) && x <= float32(p.x+p.width) &&
		y >= float32(p.y) && y <= float32(p.y+h)
}

func (p *ParamsPanel) height() int32 {
	th := p.renderer.Theme
	if p.collapsed {
		return rowHeight + th.Padding*2
	}
	rows := int32(len(ParamSliders)) + 2 // sliders, mode buttons, title
	return rows*rowHeight + th.Padding*2 + th.LineHeight
}

const (
	rowHeight    int32 = 22
	valueWidth   int32 = 52
	labelWidth   int32 = 118
	buttonHeight int32 = 18
)

// Draw renders the panel for cur and returns the edited record and whether
// anything changed this frame. The returned record is not clamped.
func (p *ParamsPanel) Draw(cur params.Params, status string) (params.Params, bool) {
	r := p.renderer
	th := r.Theme
	next := cur

	r.DrawPanel(p.x, p.y, p.width, p.height())
	x := p.x + th.Padding
	y := p.y + th.Padding
	inner := p.width - th.Padding*2

	collapseText := "-"
	if p.collapsed {
		collapseText = "+"
	}
	if gui.Button(rect(x+inner-buttonHeight, y, buttonHeight, buttonHeight), collapseText) {
		p.collapsed = !p.collapsed
	}
	rl.DrawText(status, x, y+3, th.FontSize, rl.White)
	if p.collapsed {
		return cur, false
	}
	y += rowHeight + th.LineHeight/2

	sliderWidth := inner - labelWidth - valueWidth
	for _, s := range ParamSliders {
		v := s.Get(&next)
		rl.DrawText(s.Label, x, y+4, th.FontSize, th.LabelColor)
		nv := gui.SliderBar(rect(x+labelWidth, y+2, sliderWidth, buttonHeight), "", "", v, s.Min, s.Max)
		if nv != v {
			s.Set(&next, nv)
		}
		rl.DrawText(fmt.Sprintf(s.Format, s.Get(&next)), x+labelWidth+sliderWidth+6, y+4, th.FontSize, th.ValueColor)
		y += rowHeight
	}

	third := (inner - 8) / 3
	if gui.Button(rect(x, y, third, buttonHeight), "Shape: "+next.ParticleShape.String()) {
		next.ParticleShape = NextShape(next.ParticleShape)
	}
	if gui.Button(rect(x+third+4, y, third, buttonHeight), "Color: "+next.ColorMode.String()) {
		next.ColorMode = NextColorMode(next.ColorMode)
	}
	if gui.Button(rect(x+2*(third+4), y, third, buttonHeight), toggleText(next.WrapBounds, "Wrap: on", "Wrap: off")) {
		next.WrapBounds = !next.WrapBounds
	}

	return next, next != cur
}

// NextShape cycles through the particle shapes.
func NextShape(s params.Shape) params.Shape {
	return (s + 1) % (params.ShapeCube + 1)
}

// NextColorMode cycles through the color modes.
func NextColorMode(m params.ColorMode) params.ColorMode {
	return (m + 1) % (params.ColorDensity + 1)
}

func rect(x, y, w, h int32) rl.Rectangle {
	return rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w), Height: float32(h)}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}

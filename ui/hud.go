package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	FPS        float64
	Particles  int
	Frame      uint64
	SimTime    float64
	Generation uint64
	GridDims   [3]int32
	State      string
	Paused     bool
}

// StatusLine formats the FPS readout shown in the panel title.
func (d HUDData) StatusLine() string {
	return fmt.Sprintf("FPS: %.1f | Particles: %d", d.FPS, d.Particles)
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD in the bottom-left corner.
func (h *HUD) Draw(data HUDData, screenHeight int32) {
	y := screenHeight - 62
	rl.DrawText(
		fmt.Sprintf("Frame: %d | Sim: %.1fs | Grid: %dx%dx%d | Gen: %d",
			data.Frame, data.SimTime, data.GridDims[0], data.GridDims[1], data.GridDims[2], data.Generation),
		10, y, 14, rl.LightGray,
	)

	statusText := data.State
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, y+18, 14, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-22, 12, rl.Gray)
}

// DrawDiagnostic fills the screen and shows why the engine cannot run.
func (h *HUD) DrawDiagnostic(screenWidth, screenHeight int32, diagnostic string) {
	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.Color{R: 26, G: 26, B: 46, A: 255})
	rl.DrawText("Compute error:", 20, 30, 20, rl.Red)
	rl.DrawText(diagnostic, 20, 58, 14, rl.White)
}

// PerfPanel renders the per-phase frame timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding
	height := r.Theme.LineHeight*int32(len(telemetry.Phases)+2) + padding*2

	r.DrawPanel(p.x, p.y, p.width, height)
	x := p.x + padding
	y := p.y + padding

	y = r.DrawSectionHeader(x, y, "Frame Phases")
	y = r.DrawLabelValue(x, y, "Frame", stats.AvgFrame.Round(time.Microsecond).String(), p.width-padding*2)

	for _, phase := range telemetry.Phases {
		y = r.DrawBar(x, y, phase.String(), float32(stats.PhasePct[phase]/100), p.width-padding*2)
	}
}

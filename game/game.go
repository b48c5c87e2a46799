// Package game wires the engine, camera, renderer, UI and telemetry into
// the graphical and headless run loops.
package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/engine"
	"github.com/pthm-cable/flock/kernels"
	"github.com/pthm-cable/flock/params"
	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/ui"
)

// panelSendInterval is how often panel edits are sent to the engine, in seconds.
const panelSendInterval = 0.1

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // simulated seconds per stats row; 0 = config
	OutputDir      string  // empty disables CSV output
	Headless       bool
}

// Game holds the complete run state.
type Game struct {
	cfg    *config.Config
	dev    *device.Device
	engine *engine.Engine

	// Rendering (nil in headless mode)
	camera    *camera.Orbit
	particles *renderer.ParticleRenderer
	panel     *ui.ParamsPanel
	edits     *params.Editor
	hud       *ui.HUD
	perfPanel *ui.PerfPanel

	// Telemetry
	perfCollector *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	logStats      bool

	// State
	paused        bool
	showPerf      bool
	screenWidth   float32
	screenHeight  float32
	lastMouse     rl.Vector2
	dragging      bool
	rightDragging bool
}

// NewGameWithOptions creates the device and engine and initializes it.
// A failed initialization is not fatal in graphical mode: the game shows
// the diagnostic instead of particles.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:           cfg,
		dev:           device.New(cfg.DeviceOptions()),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:     telemetry.NewCollector(statsWindow, cfg.Derived.Bounds),
		logStats:      opts.LogStats,
		screenWidth:   cfg.Derived.ScreenW32,
		screenHeight:  cfg.Derived.ScreenH32,
	}

	g.engine = engine.New(g.dev, engine.Options{
		Bounds:       cfg.Derived.Bounds,
		MaxCellCount: cfg.Grid.MaxCellCount,
		Params:       cfg.Simulation,
		Seed:         opts.Seed,
		Perf:         g.perfCollector,
	})

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.Unload()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		g.Unload()
		return nil, err
	}

	if !opts.Headless {
		g.camera = camera.New(g.screenWidth, g.screenHeight, cfg.Derived.Bounds.Center())
		g.particles = renderer.NewParticleRenderer()
		g.panel = ui.NewParamsPanel(10, 10, 420)
		g.edits = params.NewEditor(cfg.Simulation, panelSendInterval)
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-230, 10, 220)
	}

	if err := g.engine.Init(kernels.Loader{}); err != nil {
		if opts.Headless {
			g.Unload()
			return nil, err
		}
		slog.Error("engine not ready", "error", err)
	}
	return g, nil
}

// Engine returns the underlying engine.
func (g *Game) Engine() *engine.Engine {
	return g.engine
}

// Frame returns the number of completed engine frames.
func (g *Game) Frame() uint64 {
	return g.engine.Frames()
}

// UpdateHeadless advances one fixed-dt frame and handles telemetry.
func (g *Game) UpdateHeadless() {
	g.engine.Frame(g.cfg.Derived.FixedDT32)
	g.flushTelemetry()
}

// Update handles input and advances one frame using the measured frame time.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}
	g.engine.Frame(g.cfg.ClampDT(rl.GetFrameTime()))
	g.flushTelemetry()
}

// Draw renders the particles, the world box and the overlays.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	w, h := int32(g.screenWidth), int32(g.screenHeight)
	p := g.engine.Params()

	if !g.engine.Ready() {
		g.hud.DrawDiagnostic(w, h, g.engine.Diagnostic())
	} else {
		g.particles.DrawBounds(g.camera, g.engine.Bounds())
		g.particles.Draw(g.engine.Front(), g.camera, p)
	}

	data := g.hudData()
	if next, changed := g.panel.Draw(g.edits.Edited(), data.StatusLine()); changed {
		g.edits.Edit(next)
	}
	if next, ok := g.edits.Flush(rl.GetTime()); ok {
		g.engine.Configure(next)
	}
	g.hud.Draw(data, h)
	g.hud.DrawControls(h, "[Space] pause  [Tab] perf  [Home] reset camera  [F11] fullscreen  drag: orbit  right-drag: pan  wheel: zoom")
	if g.showPerf {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	rl.EndDrawing()
}

// hudData gathers the values shown in the HUD.
func (g *Game) hudData() ui.HUDData {
	return ui.HUDData{
		FPS:        float64(rl.GetFPS()),
		Particles:  g.engine.ParticleCount(),
		Frame:      g.engine.Frames(),
		SimTime:    g.engine.SimTime(),
		Generation: g.engine.Generation(),
		GridDims:   g.engine.Grid().Dims,
		State:      g.engine.State().String(),
		Paused:     g.paused,
	}
}

// Unload releases the engine, the device workers and the output files.
func (g *Game) Unload() {
	if g.engine != nil {
		g.engine.Close()
	}
	if g.dev != nil {
		g.dev.Close()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output files", "error", err)
		}
	}
}

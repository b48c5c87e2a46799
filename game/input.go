package game

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.showPerf = !g.showPerf
	}

	// Camera controls
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.perfPanel.SetPosition(int32(w)-230, 10)
}

// handleCameraInput processes orbit, pan and zoom controls. Drags that start
// on the parameter panel belong to the sliders.
func (g *Game) handleCameraInput() {
	mouse := rl.GetMousePosition()
	overPanel := g.panel.Contains(mouse.X, mouse.Y)

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.dragging = !overPanel
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		g.rightDragging = !overPanel
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		g.dragging = false
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonRight) {
		g.rightDragging = false
	}

	dx, dy := mouse.X-g.lastMouse.X, mouse.Y-g.lastMouse.Y
	g.lastMouse = mouse

	switch {
	case g.dragging && rl.IsMouseButtonDown(rl.MouseButtonLeft):
		g.camera.Rotate(dx, dy)
	case g.rightDragging && rl.IsMouseButtonDown(rl.MouseButtonRight):
		g.camera.Pan(dx, dy)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !overPanel {
		g.camera.Zoom(wheel)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

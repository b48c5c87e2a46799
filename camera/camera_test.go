package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func near(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < 1e-9
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, r3.Vec{})

	if cam.Distance != DefaultDistance {
		t.Errorf("expected distance %v, got %v", DefaultDistance, cam.Distance)
	}
	eye, target, up := cam.View()
	if !near(eye, r3.Vec{Z: 18}) {
		t.Errorf("expected eye on +Z at 18, got %v", eye)
	}
	if !near(target, r3.Vec{}) {
		t.Errorf("expected target at origin, got %v", target)
	}
	if !near(up, r3.Vec{Y: 1}) {
		t.Errorf("expected +Y up, got %v", up)
	}
}

func TestZoomClamp(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		wheel float32
		want  float64
	}{
		{"one notch in", 18, 1, 18 * 0.85},
		{"one notch out", 18, -1, 18 * 1.15},
		{"clamped near", 2.1, 5, MinDistance},
		{"clamped far", 190, -2, MaxDistance},
		{"no wheel", 18, 0, 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(800, 600, r3.Vec{})
			cam.Distance = tt.start
			cam.Zoom(tt.wheel)
			if math.Abs(cam.Distance-tt.want) > 1e-5 {
				t.Errorf("distance = %v, want %v", cam.Distance, tt.want)
			}
		})
	}
}

func TestPanScalesWithDistance(t *testing.T) {
	near := New(800, 600, r3.Vec{})
	near.SetDistance(10)
	far := New(800, 600, r3.Vec{})
	far.SetDistance(100)

	near.Pan(10, 20)
	far.Pan(10, 20)

	if math.Abs(near.PanX-1) > 1e-9 || math.Abs(near.PanY+2) > 1e-9 {
		t.Errorf("near pan = (%v, %v), want (1, -2)", near.PanX, near.PanY)
	}
	if math.Abs(far.PanX-10*near.PanX) > 1e-9 {
		t.Errorf("far pan %v should be 10x near pan %v", far.PanX, near.PanX)
	}
}

func TestPanMovesSceneWithMouse(t *testing.T) {
	cam := New(800, 600, r3.Vec{})
	cam.Pan(100, 0)

	// Dragging right moves the scene right, so the look-at point moves left.
	_, target, _ := cam.View()
	if target.X >= 0 {
		t.Errorf("expected target to move toward -X, got %v", target)
	}
}

func TestEyeKeepsDistance(t *testing.T) {
	cam := New(800, 600, r3.Vec{X: 1, Y: 2, Z: 3})
	drags := []struct{ dx, dy float32 }{
		{0, 0},
		{120, -40},
		{-900, 300},
		{5000, 5000},
	}
	for _, d := range drags {
		cam.Rotate(d.dx, d.dy)
		cam.Pan(d.dy, d.dx)
		eye, target, up := cam.View()
		if got := r3.Norm(r3.Sub(eye, target)); math.Abs(got-cam.Distance) > 1e-9 {
			t.Errorf("after drag %v: eye distance %v, want %v", d, got, cam.Distance)
		}
		if math.Abs(r3.Norm(up)-1) > 1e-9 {
			t.Errorf("after drag %v: up not unit: %v", d, up)
		}
		if math.Abs(r3.Dot(up, r3.Sub(eye, target))) > 1e-9 {
			t.Errorf("after drag %v: up not orthogonal to view", d)
		}
	}
}

func TestPitchClamp(t *testing.T) {
	cam := New(800, 600, r3.Vec{})
	cam.Rotate(0, 1e6)
	if cam.Pitch != maxPitch {
		t.Errorf("pitch = %v, want %v", cam.Pitch, maxPitch)
	}
	cam.Rotate(0, -2e6)
	if cam.Pitch != -maxPitch {
		t.Errorf("pitch = %v, want %v", cam.Pitch, -maxPitch)
	}
}

func TestYawWraps(t *testing.T) {
	cam := New(800, 600, r3.Vec{})
	cam.Rotate(1e5, 0)
	if math.Abs(cam.Yaw) > math.Pi {
		t.Errorf("yaw %v not wrapped into [-pi, pi]", cam.Yaw)
	}
}

func TestAspect(t *testing.T) {
	cam := New(1280, 720, r3.Vec{})
	if got := cam.Aspect(); math.Abs(float64(got)-1280.0/720.0) > 1e-6 {
		t.Errorf("aspect = %v", got)
	}
	cam.Resize(0, 720)
	if cam.Aspect() != 1 {
		t.Errorf("degenerate viewport aspect = %v, want 1", cam.Aspect())
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, r3.Vec{})
	cam.Rotate(300, 200)
	cam.Pan(50, 50)
	cam.Zoom(3)

	cam.Reset()

	if cam.Yaw != 0 || cam.Pitch != 0 || cam.PanX != 0 || cam.PanY != 0 {
		t.Errorf("orientation not reset: %+v", cam)
	}
	if cam.Distance != DefaultDistance {
		t.Errorf("distance = %v, want %v", cam.Distance, DefaultDistance)
	}
}

func TestProject(t *testing.T) {
	cam := New(800, 600, r3.Vec{})
	pr := cam.Projector()

	x, y, depth, ok := pr.Project(r3.Vec{})
	if !ok || math.Abs(float64(x)-400) > 1e-3 || math.Abs(float64(y)-300) > 1e-3 {
		t.Errorf("target projects to (%v, %v, %v), want screen center", x, y, ok)
	}
	if math.Abs(depth-DefaultDistance) > 1e-9 {
		t.Errorf("depth = %v, want %v", depth, DefaultDistance)
	}

	tests := []struct {
		name   string
		p      r3.Vec
		ok     bool
		check  func(x, y float32) bool
		detail string
	}{
		{"right of target", r3.Vec{X: 1}, true, func(x, y float32) bool { return x > 400 }, "x > 400"},
		{"above target", r3.Vec{Y: 1}, true, func(x, y float32) bool { return y < 300 }, "y < 300"},
		{"behind eye", r3.Vec{Z: 30}, false, nil, ""},
		{"past far plane", r3.Vec{Z: -600}, false, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, _, ok := pr.Project(tt.p)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if tt.check != nil && !tt.check(x, y) {
				t.Errorf("projected (%v, %v), want %s", x, y, tt.detail)
			}
		})
	}
}

func TestProjectFieldOfView(t *testing.T) {
	cam := New(600, 600, r3.Vec{})
	pr := cam.Projector()

	// A point on the top edge of the 60 degree frustum lands on row 0.
	edge := DefaultDistance * math.Tan(FovY*math.Pi/360)
	_, y, _, ok := pr.Project(r3.Vec{Y: edge})
	if !ok || math.Abs(float64(y)) > 1e-3 {
		t.Errorf("frustum edge projects to y=%v, want 0", y)
	}
}

package main

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/flock/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestClampBounds(t *testing.T) {
	pv := NewParamVector()
	v := make([]float64, pv.Dim())
	for i := range v {
		v[i] = 1e6
	}
	c := pv.Clamp(v)
	for i, spec := range pv.Specs {
		if c[i] != spec.Max {
			t.Errorf("%s: got %v, want %v", spec.Name, c[i], spec.Max)
		}
	}
}

func windowsAt(n int, pol, spread float64) []telemetry.FlockStats {
	ws := make([]telemetry.FlockStats, n)
	for i := range ws {
		ws[i] = telemetry.FlockStats{
			Particles:    100,
			Polarization: pol,
			Spread:       spread,
		}
	}
	return ws
}

func TestComputeQuality(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{Polarization: 0.7, Spread: 4}}

	tests := []struct {
		name    string
		windows []telemetry.FlockStats
		wantMin float64
		wantMax float64
	}{
		{"too short", windowsAt(qualityWarmupWindows, 0.7, 4), 0, 0},
		{"on target", windowsAt(6, 0.7, 4), 0.99, 1},
		{"off target", windowsAt(6, 0.05, 20), 0, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := fe.computeQuality(tt.windows)
			if q < tt.wantMin || q > tt.wantMax {
				t.Errorf("quality = %v, want in [%v, %v]", q, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(65e9); got != "1m05s" {
		t.Errorf("got %q", got)
	}
	if got := formatDuration(3725e9); got != "1h02m05s" {
		t.Errorf("got %q", got)
	}
}

func TestTuneLogWritesRows(t *testing.T) {
	pv := NewParamVector()
	path := filepath.Join(t.TempDir(), "tune_log.csv")

	tl, err := newTuneLog(path, pv)
	if err != nil {
		t.Fatal(err)
	}
	if err := tl.write(1, -0.5, pv.DefaultVector()); err != nil {
		t.Fatal(err)
	}
	if err := tl.close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "eval,fitness,neighbor_radius,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,-0.500000,1.340000,") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestTuneLogReportsWriteFailure(t *testing.T) {
	tl, err := newTuneLog(filepath.Join(t.TempDir(), "tune_log.csv"), NewParamVector())
	if err != nil {
		t.Fatal(err)
	}
	// Writes to a closed file surface through the writer's flush.
	tl.f.Close()
	if err := tl.write(1, 0, NewParamVector().DefaultVector()); err == nil {
		t.Error("expected an error writing to a closed file")
	}
}

func TestRunRequiresOutput(t *testing.T) {
	if err := run(options{}); err == nil {
		t.Error("expected an error without an output directory")
	}
}

package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseBuild)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseStep)
		time.Sleep(time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Frames != 5 {
		t.Errorf("frames = %d, want 5", stats.Frames)
	}
	if stats.AvgFrame <= 0 || stats.FramesPerSec <= 0 {
		t.Errorf("avg=%v fps=%v, want positive", stats.AvgFrame, stats.FramesPerSec)
	}
	if !stats.Has(PhaseBuild) || !stats.Has(PhaseStep) {
		t.Error("build and step should be tracked")
	}
	if stats.Has(PhaseRealloc) {
		t.Error("realloc never ran")
	}
	if stats.PhasePct[PhaseStep] <= stats.PhasePct[PhaseBuild] {
		t.Errorf("step %v%% should exceed build %v%%", stats.PhasePct[PhaseStep], stats.PhasePct[PhaseBuild])
	}
	if stats.MinFrame > stats.AvgFrame || stats.AvgFrame > stats.MaxFrame {
		t.Errorf("min/avg/max out of order: %v %v %v", stats.MinFrame, stats.AvgFrame, stats.MaxFrame)
	}
}

func TestPerfCollectorWindowDropsOldFrames(t *testing.T) {
	pc := NewPerfCollector(2)

	pc.StartTick()
	pc.StartPhase(PhaseRealloc)
	pc.EndTick()
	if !pc.Stats().Has(PhaseRealloc) {
		t.Fatal("realloc frame not recorded")
	}

	for i := 0; i < 2; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseStep)
		pc.EndTick()
	}
	stats := pc.Stats()
	if stats.Frames != 2 {
		t.Errorf("frames = %d, want window size 2", stats.Frames)
	}
	if stats.Has(PhaseRealloc) {
		t.Error("realloc frame should have left the window")
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.Frames != 0 || stats.AvgFrame != 0 || stats.FramesPerSec != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
	for _, ph := range Phases {
		if stats.Has(ph) {
			t.Errorf("%v tracked in empty window", ph)
		}
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		ph   Phase
		want string
	}{
		{PhaseApply, "apply"},
		{PhaseStep, "step"},
		{NumPhases, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.ph.String(); got != tt.want {
			t.Errorf("Phase(%d) = %q, want %q", tt.ph, got, tt.want)
		}
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	stats := PerfStats{
		AvgFrame:     2 * time.Millisecond,
		MinFrame:     time.Millisecond,
		MaxFrame:     5 * time.Millisecond,
		FramesPerSec: 500,
	}
	stats.PhasePct[PhaseClear] = 5
	stats.PhasePct[PhaseBuild] = 15
	stats.PhasePct[PhaseStep] = 80

	row := stats.ToCSV(120, 60000)

	if row.Frame != 120 || row.Particles != 60000 {
		t.Errorf("frame/particles = %d/%d", row.Frame, row.Particles)
	}
	if row.AvgFrameUS != 2000 || row.MinFrameUS != 1000 || row.MaxFrameUS != 5000 {
		t.Errorf("frame us = %d/%d/%d", row.AvgFrameUS, row.MinFrameUS, row.MaxFrameUS)
	}
	if row.ClearPct != 5 || row.BuildPct != 15 || row.StepPct != 80 || row.ApplyPct != 0 {
		t.Errorf("phase pct = %+v", row)
	}
}

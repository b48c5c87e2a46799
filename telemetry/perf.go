package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of an engine frame.
type Phase uint8

// Frame phases in execution order. Realloc only appears in frames that
// applied a record needing new buffers.
const (
	PhaseApply   Phase = iota // pending parameter record
	PhaseRealloc              // buffer reallocation and seeding
	PhaseClear
	PhaseBuild
	PhaseStep

	NumPhases
)

var phaseNames = [NumPhases]string{"apply", "realloc", "clear", "build", "step"}

func (ph Phase) String() string {
	if ph < NumPhases {
		return phaseNames[ph]
	}
	return "unknown"
}

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseApply, PhaseRealloc, PhaseClear, PhaseBuild, PhaseStep}

// frameSample is the timing of one frame.
type frameSample struct {
	total  time.Duration
	phases [NumPhases]time.Duration
	seen   uint8 // bit per phase
}

// PerfCollector keeps per-phase frame timings over a ring of recent frames.
// It is driven from the frame loop and is not safe for concurrent use.
type PerfCollector struct {
	ring   []frameSample
	next   int
	filled int

	cur        frameSample
	frameStart time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over the last window frames.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]frameSample, window)}
}

// StartTick begins timing a frame.
func (p *PerfCollector) StartTick() {
	p.frameStart = time.Now()
	p.cur = frameSample{}
	p.inPhase = false
}

// StartPhase closes the running phase and starts timing ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = ph
	p.phaseStart = now
	p.inPhase = true
	p.cur.seen |= 1 << ph
}

// EndTick closes the running phase and stores the frame in the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.frameStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// PerfStats aggregates the frames currently in the window.
type PerfStats struct {
	Frames       int // frames in the window
	AvgFrame     time.Duration
	MinFrame     time.Duration
	MaxFrame     time.Duration
	FramesPerSec float64 // engine throughput, not display rate

	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64 // share of the average frame

	seen uint8
}

// Has reports whether ph ran in any frame of the window.
func (s PerfStats) Has(ph Phase) bool {
	return s.seen&(1<<ph) != 0
}

// Stats aggregates the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Frames: p.filled}
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var phaseSum [NumPhases]time.Duration
	for i, f := range p.ring[:p.filled] {
		total += f.total
		if i == 0 || f.total < s.MinFrame {
			s.MinFrame = f.total
		}
		s.MaxFrame = max(s.MaxFrame, f.total)
		for ph, d := range f.phases {
			phaseSum[ph] += d
		}
		s.seen |= f.seen
	}

	n := time.Duration(p.filled)
	s.AvgFrame = total / n
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgFrame > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgFrame) * 100
		}
	}
	if s.AvgFrame > 0 {
		s.FramesPerSec = float64(time.Second) / float64(s.AvgFrame)
	}
	return s
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats() {
	attrs := []any{
		"frames", s.Frames,
		"avg_frame_us", s.AvgFrame.Microseconds(),
		"max_frame_us", s.MaxFrame.Microseconds(),
		"frames_per_sec", int(s.FramesPerSec),
	}
	for _, ph := range Phases {
		if s.Has(ph) {
			attrs = append(attrs, ph.String()+"_pct", int(s.PhasePct[ph]*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	Frame        uint64  `csv:"frame"`
	Particles    int     `csv:"particles"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	FramesPerSec float64 `csv:"frames_per_sec"`
	ApplyPct     float64 `csv:"apply_pct"`
	ReallocPct   float64 `csv:"realloc_pct"`
	ClearPct     float64 `csv:"clear_pct"`
	BuildPct     float64 `csv:"build_pct"`
	StepPct      float64 `csv:"step_pct"`
}

// ToCSV flattens the stats for the engine at frame with the given count.
func (s PerfStats) ToCSV(frame uint64, particles int) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:        frame,
		Particles:    particles,
		AvgFrameUS:   s.AvgFrame.Microseconds(),
		MinFrameUS:   s.MinFrame.Microseconds(),
		MaxFrameUS:   s.MaxFrame.Microseconds(),
		FramesPerSec: s.FramesPerSec,
		ApplyPct:     s.PhasePct[PhaseApply],
		ReallocPct:   s.PhasePct[PhaseRealloc],
		ClearPct:     s.PhasePct[PhaseClear],
		BuildPct:     s.PhasePct[PhaseBuild],
		StepPct:      s.PhasePct[PhaseStep],
	}
}

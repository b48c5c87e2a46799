package params

import (
	"math"
	"sync"
	"testing"
)

func TestClampDefaults(t *testing.T) {
	p := Clamp(Defaults())

	if p.ParticleCount != 60000 {
		t.Errorf("particle count = %d, want 60000", p.ParticleCount)
	}
	// Default separation radius exceeds the neighbor radius and must be pulled down.
	if p.SeparationRadius != p.NeighborRadius {
		t.Errorf("separation radius = %v, want %v", p.SeparationRadius, p.NeighborRadius)
	}
	if p.ColorMode != ColorHeading {
		t.Errorf("color mode = %v, want heading", p.ColorMode)
	}
}

func TestClampRanges(t *testing.T) {
	tests := []struct {
		name  string
		in    Params
		check func(Params) bool
	}{
		{"count low", Params{ParticleCount: -5}, func(p Params) bool { return p.ParticleCount == 1 }},
		{"count high", Params{ParticleCount: 1 << 30}, func(p Params) bool { return p.ParticleCount == MaxParticles }},
		{"neighbor low", Params{NeighborRadius: 0}, func(p Params) bool { return p.NeighborRadius == 0.05 }},
		{"neighbor high", Params{NeighborRadius: 500}, func(p Params) bool { return p.NeighborRadius == 50 }},
		{"separation floor", Params{NeighborRadius: 1, SeparationRadius: 0}, func(p Params) bool { return p.SeparationRadius == 0.01 }},
		{"separation follows clamped neighbor", Params{NeighborRadius: 0.001, SeparationRadius: 3}, func(p Params) bool { return p.SeparationRadius == 0.05 }},
		{"weights", Params{WeightSeparation: -1, WeightAlignment: 99, WeightCohesion: 7}, func(p Params) bool {
			return p.WeightSeparation == 0 && p.WeightAlignment == 50 && p.WeightCohesion == 7
		}},
		{"max speed above min", Params{MinSpeed: 5, MaxSpeed: 1}, func(p Params) bool {
			return math.Abs(float64(p.MaxSpeed-5.001)) < 1e-5
		}},
		{"max speed floor", Params{MinSpeed: 0, MaxSpeed: 0}, func(p Params) bool { return p.MaxSpeed == 0.01 }},
		{"max speed ceiling with huge min", Params{MinSpeed: 2000, MaxSpeed: 2000}, func(p Params) bool {
			return p.MinSpeed == 1000 && p.MaxSpeed == 1000
		}},
		{"sim speed", Params{SimSpeed: 10}, func(p Params) bool { return p.SimSpeed == 2 }},
		{"sim speed low", Params{SimSpeed: 0}, func(p Params) bool { return float32(0.1) == p.SimSpeed }},
		{"margin", Params{BoundaryMargin: 0}, func(p Params) bool { return p.BoundaryMargin == 0.01 }},
		{"point size", Params{PointSize: 100}, func(p Params) bool { return p.PointSize == 64 }},
		{"shape", Params{ParticleShape: 9}, func(p Params) bool { return p.ParticleShape == ShapeCube }},
		{"color mode", Params{ColorMode: -2}, func(p Params) bool { return p.ColorMode == ColorSolid }},
		{"density curve", Params{DensityCurve: 0}, func(p Params) bool { return p.DensityCurve == 0.1 }},
		{"nan", Params{HueRange: float32(math.NaN())}, func(p Params) bool { return p.HueRange == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.in)
			if !tt.check(got) {
				t.Errorf("Clamp(%+v) = %+v", tt.in, got)
			}
		})
	}
}

func TestClampIdempotent(t *testing.T) {
	inputs := []Params{
		Defaults(),
		{},
		{ParticleCount: 1e9, NeighborRadius: 1e9, MinSpeed: 1e9, MaxSpeed: -1, DensityCurve: 1e9},
		{NeighborRadius: 0.3, SeparationRadius: 0.2, MinSpeed: 3, MaxSpeed: 2.5},
	}
	for i, in := range inputs {
		once := Clamp(in)
		twice := Clamp(once)
		if once != twice {
			t.Errorf("input %d: Clamp not idempotent:\n once  %+v\n twice %+v", i, once, twice)
		}
	}
}

func TestNeedsRebuild(t *testing.T) {
	base := Clamp(Defaults())

	if NeedsRebuild(base, base) {
		t.Error("identical records should not need a rebuild")
	}

	count := base
	count.ParticleCount++
	if !NeedsRebuild(base, count) {
		t.Error("particle count change should need a rebuild")
	}

	tiny := base
	tiny.NeighborRadius += 0.5e-4
	if NeedsRebuild(base, tiny) {
		t.Error("sub-epsilon radius change should not need a rebuild")
	}

	radius := base
	radius.NeighborRadius += 0.01
	if !NeedsRebuild(base, radius) {
		t.Error("radius change should need a rebuild")
	}

	other := base
	other.WeightCohesion = 3
	other.WrapBounds = true
	if NeedsRebuild(base, other) {
		t.Error("weight and wrap changes should not need a rebuild")
	}
}

func TestStoreTakeOnce(t *testing.T) {
	var s Store

	if s.Take() != nil {
		t.Fatal("empty store returned a record")
	}

	s.Submit(Params{ParticleCount: 10})
	s.Submit(Params{ParticleCount: 20})

	got := s.Take()
	if got == nil {
		t.Fatal("expected pending record")
	}
	if got.ParticleCount != 20 {
		t.Errorf("latest submission should win, got count %d", got.ParticleCount)
	}
	// Submitted records are clamped.
	if got.NeighborRadius != 0.05 {
		t.Errorf("record not clamped: neighbor radius %v", got.NeighborRadius)
	}
	if s.Take() != nil {
		t.Error("record should be taken only once")
	}
	if s.Version() != 2 {
		t.Errorf("version = %d, want 2", s.Version())
	}
}

func TestStoreConcurrentSubmitNeverMixes(t *testing.T) {
	var s Store
	var wg sync.WaitGroup

	// Each writer submits records whose fields all carry the same marker.
	for w := 1; w <= 4; w++ {
		wg.Add(1)
		go func(marker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s.Submit(Params{
					ParticleCount:    marker,
					WeightSeparation: float32(marker),
					WeightAlignment:  float32(marker),
				})
			}
		}(w)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	check := func(p *Params) {
		if p == nil {
			return
		}
		m := float32(p.ParticleCount)
		if p.WeightSeparation != m || p.WeightAlignment != m {
			t.Errorf("torn record: %+v", *p)
		}
	}
	for {
		select {
		case <-done:
			check(s.Take())
			return
		default:
			check(s.Take())
		}
	}
}

func TestEditorBatchesEdits(t *testing.T) {
	base := Clamp(Defaults())
	e := NewEditor(base, 0.1)

	if _, ok := e.Flush(0); ok {
		t.Fatal("unedited editor released a record")
	}

	a := base
	a.WeightCohesion = 2
	e.Edit(a)
	got, ok := e.Flush(1.0)
	if !ok || got.WeightCohesion != 2 {
		t.Fatalf("first edit not released: ok=%v cohesion=%v", ok, got.WeightCohesion)
	}

	// Edits inside the interval accumulate in the working copy.
	b := e.Edited()
	b.WeightAlignment = 3
	e.Edit(b)
	c := e.Edited()
	c.ParticleCount = 1234
	e.Edit(c)
	if _, ok := e.Flush(1.05); ok {
		t.Fatal("released before the interval elapsed")
	}
	if !e.Pending() {
		t.Error("edits should be pending")
	}

	got, ok = e.Flush(1.1)
	if !ok {
		t.Fatal("pending edits not released after the interval")
	}
	if got.WeightCohesion != 2 || got.WeightAlignment != 3 || got.ParticleCount != 1234 {
		t.Errorf("released record lost an edit: %+v", got)
	}
	if _, ok := e.Flush(5); ok {
		t.Error("released the same edits twice")
	}
}

func TestEditorIgnoresNoopAndClamps(t *testing.T) {
	base := Clamp(Defaults())
	e := NewEditor(base, 0.1)

	e.Edit(base)
	if e.Pending() {
		t.Error("identical record marked pending")
	}

	wild := base
	wild.SimSpeed = 50
	e.Edit(wild)
	if got := e.Edited().SimSpeed; got != 2 {
		t.Errorf("working copy simSpeed = %v, want clamped 2", got)
	}
}

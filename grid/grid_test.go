package grid

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func cube(half float32) Bounds {
	return NewBounds([3]float32{-half, -half, -half}, [3]float32{half, half, half})
}

func TestSizeDefaults(t *testing.T) {
	s := Size(cube(10), 1.34, DefaultMaxCellCount)

	if s.CellSize != 1.34 {
		t.Errorf("cell size = %v, want 1.34", s.CellSize)
	}
	for i, d := range s.Dims {
		if d != 15 {
			t.Errorf("dim %d = %d, want 15", i, d)
		}
	}
	if s.CellCount != 15*15*15 {
		t.Errorf("cell count = %d, want %d", s.CellCount, 15*15*15)
	}
}

func TestSizeMinCellSize(t *testing.T) {
	s := Size(cube(10), 0.05, DefaultMaxCellCount)
	if s.CellSize != MinCellSize {
		t.Errorf("cell size = %v, want %v", s.CellSize, MinCellSize)
	}
	if s.CellCount != 40*40*40 {
		t.Errorf("cell count = %d, want 64000", s.CellCount)
	}
	if s.NeighborRadius != 0.05 {
		t.Errorf("sized radius = %v, want 0.05", s.NeighborRadius)
	}
}

func TestSizeBudget(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		radius float32
		budget int
	}{
		{"20 cube tiny radius default budget", cube(10), 0.05, DefaultMaxCellCount},
		{"20 cube tiny radius small budget", cube(10), 0.05, 1000},
		{"20 cube tiny radius 4096", cube(10), 0.05, 4096},
		{"large world", cube(500), 0.5, DefaultMaxCellCount},
		{"huge world tight budget", cube(5000), 0.05, 1 << 16},
		{"box", NewBounds([3]float32{0, 0, 0}, [3]float32{300, 200, 100}), 0.7, 50000},
		{"budget one", cube(10), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Size(tt.bounds, tt.radius, tt.budget)

			if s.CellSize < tt.radius {
				t.Errorf("cell size %v < neighbor radius %v", s.CellSize, tt.radius)
			}
			if s.CellCount > tt.budget {
				t.Errorf("cell count %d exceeds budget %d", s.CellCount, tt.budget)
			}

			// Recomputing the dims from the returned cell size gives the same grid.
			ext := tt.bounds.Extent()
			exts := []float64{ext.X, ext.Y, ext.Z}
			count := 1
			for i, e := range exts {
				d := int32(math.Ceil(float64(float32(e) / s.CellSize)))
				if d < 1 {
					d = 1
				}
				if d != s.Dims[i] {
					t.Errorf("axis %d: recomputed dim %d, got %d", i, d, s.Dims[i])
				}
				count *= int(d)
			}
			if count != s.CellCount {
				t.Errorf("recomputed cell count %d, got %d", count, s.CellCount)
			}
		})
	}
}

func TestSizeNoBudget(t *testing.T) {
	s := Size(cube(100), 0.05, 0)
	if s.CellCount != 400*400*400 {
		t.Errorf("cell count = %d, want %d", s.CellCount, 400*400*400)
	}
}

func TestSizeDegenerateExtent(t *testing.T) {
	s := Size(NewBounds([3]float32{0, 0, 0}, [3]float32{10, 0, 0}), 1, DefaultMaxCellCount)
	if s.Dims[1] != 1 || s.Dims[2] != 1 {
		t.Errorf("flat axes should have one cell, got %v", s.Dims)
	}
	if s.Dims[0] != 10 {
		t.Errorf("x dim = %d, want 10", s.Dims[0])
	}
}

func TestCellCoordAndIndex(t *testing.T) {
	s := Size(cube(10), 2, DefaultMaxCellCount) // 10x10x10 cells of size 2

	tests := []struct {
		name       string
		x, y, z    float32
		cx, cy, cz int32
	}{
		{"min corner", -10, -10, -10, 0, 0, 0},
		{"max corner clamps", 10, 10, 10, 9, 9, 9},
		{"center", 0, 0, 0, 5, 5, 5},
		{"just below center", -0.001, -0.001, -0.001, 4, 4, 4},
		{"outside clamps", -50, 3, 50, 0, 6, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx, cy, cz := s.CellCoord(tt.x, tt.y, tt.z)
			if cx != tt.cx || cy != tt.cy || cz != tt.cz {
				t.Errorf("CellCoord = (%d,%d,%d), want (%d,%d,%d)", cx, cy, cz, tt.cx, tt.cy, tt.cz)
			}
			want := int(tt.cx) + 10*(int(tt.cy)+10*int(tt.cz))
			if got := s.CellOf(tt.x, tt.y, tt.z); got != want {
				t.Errorf("CellOf = %d, want %d", got, want)
			}
		})
	}
}

func TestNeighborCells(t *testing.T) {
	s := Spec{Dims: [3]int32{5, 2, 1}, CellSize: 1}

	tests := []struct {
		name   string
		axis   int
		c      int32
		wrap   bool
		narrow bool
		want   []int32
	}{
		{"interior", 0, 2, false, false, []int32{1, 2, 3}},
		{"low edge clipped", 0, 0, false, false, []int32{0, 1}},
		{"high edge clipped", 0, 4, false, false, []int32{3, 4}},
		{"low edge wraps", 0, 0, true, false, []int32{4, 0, 1}},
		{"high edge wraps", 0, 4, true, false, []int32{3, 4, 0}},
		{"dim two wraps without duplicates", 1, 0, true, false, []int32{1, 0}},
		{"dim one", 2, 0, true, false, []int32{0}},
		{"dim one no wrap", 2, 0, false, false, []int32{0}},
		{"narrow seam first cell reaches past last", 0, 0, true, true, []int32{3, 4, 0, 1}},
		{"narrow seam cell before last reaches first", 0, 3, true, true, []int32{2, 3, 4, 0}},
		{"narrow seam last cell", 0, 4, true, true, []int32{3, 4, 0}},
		{"narrow seam interior", 0, 2, true, true, []int32{1, 2, 3}},
		{"narrow seam ignored without wrap", 0, 0, false, true, []int32{0, 1}},
		{"narrow seam dim two", 1, 0, true, true, []int32{0, 1}},
		{"narrow seam dim one", 2, 0, true, true, []int32{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells, n := s.NeighborCells(tt.axis, tt.c, tt.wrap, tt.narrow)
			if n != len(tt.want) {
				t.Fatalf("got %d cells %v, want %v", n, cells[:n], tt.want)
			}
			for i := range tt.want {
				if cells[i] != tt.want[i] {
					t.Errorf("cells = %v, want %v", cells[:n], tt.want)
					break
				}
			}
		})
	}
}

func TestLastCellWidth(t *testing.T) {
	s := Size(cube(10), 1.9, DefaultMaxCellCount)
	if s.Dims[0] != 11 {
		t.Fatalf("dims = %v, want 11 per axis", s.Dims)
	}
	if got := s.LastCellWidth(0, 20); math.Abs(float64(got-1.0)) > 1e-5 {
		t.Errorf("last cell width = %v, want 1.0", got)
	}

	even := Size(cube(10), 2, DefaultMaxCellCount)
	if got := even.LastCellWidth(0, 20); got != 2 {
		t.Errorf("last cell width = %v, want a full cell", got)
	}
}

func TestBounds(t *testing.T) {
	b := cube(10)
	if c := b.Center(); c != (r3.Vec{}) {
		t.Errorf("center = %v, want origin", c)
	}
	if e := b.Extent(); e != (r3.Vec{X: 20, Y: 20, Z: 20}) {
		t.Errorf("extent = %v", e)
	}
	if !b.Contains(r3.Vec{X: 10, Y: -10, Z: 0}) {
		t.Error("faces should be contained")
	}
	if b.Contains(r3.Vec{X: 10.01}) {
		t.Error("point outside reported as contained")
	}
}

// Package grid sizes the uniform spatial grid used for neighbor search and
// defines the cell-index formula shared by the host and the device kernels.
package grid

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// MinCellSize is the smallest cell edge the sizer will produce.
const MinCellSize = 0.5

// DefaultMaxCellCount is the default cell-count budget (2^20).
const DefaultMaxCellCount = 1 << 20

// budgetIterations bounds the cell-size correction loop.
const budgetIterations = 4

// budgetMargin compensates for ceil() overshoot when growing cells.
const budgetMargin = 1.001

// Bounds is an axis-aligned world box.
type Bounds struct {
	Min, Max r3.Vec
}

// NewBounds builds bounds from two corners given as float32 triples.
func NewBounds(lo, hi [3]float32) Bounds {
	return Bounds{
		Min: r3.Vec{X: float64(lo[0]), Y: float64(lo[1]), Z: float64(lo[2])},
		Max: r3.Vec{X: float64(hi[0]), Y: float64(hi[1]), Z: float64(hi[2])},
	}
}

// Extent returns the size of the box along each axis.
func (b Bounds) Extent() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Contains reports whether p lies inside the box (faces included).
func (b Bounds) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// MinF32 returns Min as a float32 triple for uniform upload.
func (b Bounds) MinF32() [3]float32 {
	return [3]float32{float32(b.Min.X), float32(b.Min.Y), float32(b.Min.Z)}
}

// MaxF32 returns Max as a float32 triple for uniform upload.
func (b Bounds) MaxF32() [3]float32 {
	return [3]float32{float32(b.Max.X), float32(b.Max.Y), float32(b.Max.Z)}
}

// Spec describes a sized grid over a world box.
type Spec struct {
	Min       [3]float32
	CellSize  float32
	Dims      [3]int32
	CellCount int

	// NeighborRadius is the radius the grid was sized for.
	NeighborRadius float32
}

// Size derives the grid for the given bounds and neighbor radius.
// The cell size never drops below neighborRadius, so a 3x3x3 block of
// cells always covers the neighbor sphere. When the cell count exceeds
// budget the cells are grown; a budget <= 0 disables that step.
func Size(b Bounds, neighborRadius float32, budget int) Spec {
	ext := b.Extent()
	s := Spec{
		Min:            b.MinF32(),
		CellSize:       max(MinCellSize, neighborRadius),
		NeighborRadius: neighborRadius,
	}
	s.computeDims(ext)

	if budget > 0 && s.CellCount > budget {
		// Usually one iteration; ceil() can overshoot slightly.
		for iter := 0; iter < budgetIterations && s.CellCount > budget; iter++ {
			scale := math.Cbrt(float64(s.CellCount) / float64(budget))
			s.CellSize *= float32(scale * budgetMargin)
			s.computeDims(ext)
		}
	}
	return s
}

func (s *Spec) computeDims(ext r3.Vec) {
	s.Dims = [3]int32{
		axisDim(ext.X, s.CellSize),
		axisDim(ext.Y, s.CellSize),
		axisDim(ext.Z, s.CellSize),
	}
	s.CellCount = int(s.Dims[0]) * int(s.Dims[1]) * int(s.Dims[2])
}

func axisDim(extent float64, cellSize float32) int32 {
	d := int32(math.Ceil(float64(float32(extent) / cellSize)))
	if d < 1 {
		return 1
	}
	return d
}

// CellCoord returns the cell containing (x, y, z). Positions outside the
// grid are clamped onto the boundary cells.
func (s Spec) CellCoord(x, y, z float32) (cx, cy, cz int32) {
	inv := 1 / s.CellSize
	cx = clampCoord(int32(floor32((x-s.Min[0])*inv)), s.Dims[0])
	cy = clampCoord(int32(floor32((y-s.Min[1])*inv)), s.Dims[1])
	cz = clampCoord(int32(floor32((z-s.Min[2])*inv)), s.Dims[2])
	return cx, cy, cz
}

// CellIndex flattens a cell coordinate, x fastest.
func (s Spec) CellIndex(cx, cy, cz int32) int {
	return int(cx) + int(s.Dims[0])*(int(cy)+int(s.Dims[1])*int(cz))
}

// CellOf returns the flat cell index containing (x, y, z).
func (s Spec) CellOf(x, y, z float32) int {
	return s.CellIndex(s.CellCoord(x, y, z))
}

// NeighborCells returns the distinct cell coordinates within one cell of c
// along axis. With wrap the range folds around the grid; a cell is never
// returned twice even when the dimension is smaller than 3. narrowSeam
// marks a last cell narrower than the neighbor radius: the cells on either
// side of it then also reach one cell further across the seam.
func (s Spec) NeighborCells(axis int, c int32, wrap, narrowSeam bool) (cells [4]int32, n int) {
	dim := s.Dims[axis]
	lo, hi := int32(-1), int32(1)
	if wrap && narrowSeam {
		if c == 0 {
			lo = -2
		}
		if c == dim-2 {
			hi = 2
		}
	}
	for d := lo; d <= hi; d++ {
		nc := c + d
		if wrap {
			nc = (nc%dim + dim) % dim
		} else if nc < 0 || nc >= dim {
			continue
		}
		if slices.Contains(cells[:n], nc) {
			continue
		}
		cells[n] = nc
		n++
	}
	return cells, n
}

// LastCellWidth returns how much of the last cell along axis lies inside a
// world of the given extent.
func (s Spec) LastCellWidth(axis int, extent float32) float32 {
	return extent - float32(s.Dims[axis]-1)*s.CellSize
}

func clampCoord(c, dim int32) int32 {
	if c < 0 {
		return 0
	}
	if c >= dim {
		return dim - 1
	}
	return c
}

func floor32(v float32) float32 {
	return float32(math.Floor(float64(v)))
}

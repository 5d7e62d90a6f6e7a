package main

import (
	"math"

	"github.com/paulmach/orb"
)

// Straight and diagonal step costs. 14 approximates 10*sqrt(2) so the
// search stays in integers.
const (
	straightStepCost = 10
	diagonalStepCost = 14
)

// Cell is an integer grid coordinate.
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns the cell offset by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Sub returns the cell offset by -d.
func (c Cell) Sub(d Cell) Cell {
	return Cell{X: c.X - d.X, Y: c.Y - d.Y}
}

// OctileDistance returns the integer octile distance between two cells.
func OctileDistance(a, b Cell) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)

	if dx > dy {
		return diagonalStepCost*dy + straightStepCost*(dx-dy)
	}
	return diagonalStepCost*dx + straightStepCost*(dy-dx)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// GridTransform maps room-local cells to world space. Lower is the room
// template's lower bound: local cell (0,0) is template cell Lower.
type GridTransform struct {
	CellSize orb.Point
	Origin   orb.Point
	Lower    Cell
}

// NewGridTransform builds a transform with square cells.
func NewGridTransform(cellSize float64, origin orb.Point, lower Cell) GridTransform {
	return GridTransform{
		CellSize: orb.Point{cellSize, cellSize},
		Origin:   origin,
		Lower:    lower,
	}
}

// Valid reports whether the transform has a usable cell size.
func (t GridTransform) Valid() bool {
	return t.CellSize.X() > 0 && t.CellSize.Y() > 0
}

// CellToWorld returns the world position of the centre of a local cell.
func (t GridTransform) CellToWorld(local Cell) orb.Point {
	template := local.Add(t.Lower)
	return orb.Point{
		t.Origin.X() + float64(template.X)*t.CellSize.X() + t.CellSize.X()*0.5,
		t.Origin.Y() + float64(template.Y)*t.CellSize.Y() + t.CellSize.Y()*0.5,
	}
}

// WorldToCell returns the local cell containing p.
func (t GridTransform) WorldToCell(p orb.Point) Cell {
	template := Cell{
		X: int(math.Floor((p.X() - t.Origin.X()) / t.CellSize.X())),
		Y: int(math.Floor((p.Y() - t.Origin.Y()) / t.CellSize.Y())),
	}
	return template.Sub(t.Lower)
}

// CellRange returns the inclusive range of local cells a bound overlaps on
// a width x height grid. Edges that only touch a cell boundary do not count
// as overlap, except for degenerate bounds which still claim the cell they
// sit in. The result is clamped to one cell beyond the grid on each side.
func (t GridTransform) CellRange(b orb.Bound, width, height int) (lo, hi Cell) {
	minX := localAxis(b.Min.X(), t.Origin.X(), t.CellSize.X(), t.Lower.X, width)
	minY := localAxis(b.Min.Y(), t.Origin.Y(), t.CellSize.Y(), t.Lower.Y, height)
	maxX := localAxis(b.Max.X(), t.Origin.X(), t.CellSize.X(), t.Lower.X, width)
	maxY := localAxis(b.Max.Y(), t.Origin.Y(), t.CellSize.Y(), t.Lower.Y, height)

	lo = Cell{X: int(math.Floor(minX)), Y: int(math.Floor(minY))}
	hi = Cell{X: int(math.Ceil(maxX)) - 1, Y: int(math.Ceil(maxY)) - 1}
	if hi.X < lo.X {
		hi.X = lo.X
	}
	if hi.Y < lo.Y {
		hi.Y = lo.Y
	}
	return lo, hi
}

// localAxis converts a world coordinate to a fractional local cell index,
// clamped to [-1, size+1] so huge bounds never overflow int.
func localAxis(v, origin, cellSize float64, lower, size int) float64 {
	local := (v-origin)/cellSize - float64(lower)
	if math.IsNaN(local) {
		return -1
	}
	return math.Max(-1, math.Min(local, float64(size+1)))
}

// RoomBound returns the world-space bound covering width x height local cells.
func (t GridTransform) RoomBound(width, height int) orb.Bound {
	lo := orb.Point{
		t.Origin.X() + float64(t.Lower.X)*t.CellSize.X(),
		t.Origin.Y() + float64(t.Lower.Y)*t.CellSize.Y(),
	}
	return orb.Bound{
		Min: lo,
		Max: orb.Point{
			lo.X() + float64(width)*t.CellSize.X(),
			lo.Y() + float64(height)*t.CellSize.Y(),
		},
	}
}

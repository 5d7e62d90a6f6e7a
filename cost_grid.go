package main

import "fmt"

// CostGrid holds the movement penalty of every cell in a room. A penalty of
// 0 marks the cell impassable.
type CostGrid struct {
	width  int
	height int
	cells  []int
}

// NewCostGrid allocates a width x height grid with every cell blocked.
func NewCostGrid(width, height int) *CostGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &CostGrid{
		width:  width,
		height: height,
		cells:  make([]int, width*height),
	}
}

// NewUniformCostGrid allocates a grid with every cell set to penalty.
func NewUniformCostGrid(width, height, penalty int) *CostGrid {
	g := NewCostGrid(width, height)
	for i := range g.cells {
		g.cells[i] = penalty
	}
	return g
}

func (g *CostGrid) Width() int  { return g.width }
func (g *CostGrid) Height() int { return g.height }

// InBounds reports whether (x, y) lies inside the grid.
func (g *CostGrid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Penalty returns the movement penalty of (x, y).
func (g *CostGrid) Penalty(x, y int) (int, error) {
	if !g.InBounds(x, y) {
		return 0, fmt.Errorf("penalty at (%d, %d) in %dx%d grid: %w", x, y, g.width, g.height, ErrOutOfRange)
	}
	return g.cells[y*g.width+x], nil
}

// Walkable reports whether (x, y) is inside the grid and not blocked.
func (g *CostGrid) Walkable(x, y int) bool {
	return g.InBounds(x, y) && g.cells[y*g.width+x] > 0
}

// Set assigns the movement penalty of (x, y).
func (g *CostGrid) Set(x, y, penalty int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("set (%d, %d) in %dx%d grid: %w", x, y, g.width, g.height, ErrOutOfRange)
	}
	if penalty < 0 {
		penalty = 0
	}
	g.cells[y*g.width+x] = penalty
	return nil
}

// Rows returns a copy of the grid, one slice per row, row 0 first.
func (g *CostGrid) Rows() [][]int {
	rows := make([][]int, g.height)
	for y := 0; y < g.height; y++ {
		rows[y] = append([]int(nil), g.cells[y*g.width:(y+1)*g.width]...)
	}
	return rows
}

package main

import (
	"fmt"

	"github.com/paulmach/orb"
)

// TileKind classifies a static tile for pathfinding.
type TileKind uint8

const (
	TileNeutral TileKind = iota
	TileBlocking
	TilePreferred
)

// Tile characters used in room templates.
const (
	blockingTileChar  = '#'
	preferredTileChar = '='
)

// TileLayout is the static tile classification of a room, indexed by local
// cell with y growing upwards.
type TileLayout struct {
	Width  int
	Height int
	kinds  []TileKind
}

// NewTileLayout returns a layout of neutral tiles.
func NewTileLayout(width, height int) *TileLayout {
	return &TileLayout{
		Width:  width,
		Height: height,
		kinds:  make([]TileKind, width*height),
	}
}

// ParseTileRows builds a layout from template rows listed top to bottom.
// Short rows are padded with neutral tiles.
func ParseTileRows(width, height int, rows []string) (*TileLayout, error) {
	if len(rows) > height {
		return nil, fmt.Errorf("%d tile rows for a room %d cells high: %w", len(rows), height, ErrInvalidRoom)
	}

	layout := NewTileLayout(width, height)
	for i, row := range rows {
		y := height - 1 - i
		runes := []rune(row)
		if len(runes) > width {
			return nil, fmt.Errorf("tile row %d has %d cells, room is %d wide: %w", i, len(runes), width, ErrInvalidRoom)
		}
		for x, r := range runes {
			switch r {
			case blockingTileChar:
				layout.Set(x, y, TileBlocking)
			case preferredTileChar:
				layout.Set(x, y, TilePreferred)
			}
		}
	}
	return layout, nil
}

// At returns the tile kind at (x, y); cells outside the layout are neutral.
func (l *TileLayout) At(x, y int) TileKind {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return TileNeutral
	}
	return l.kinds[y*l.Width+x]
}

func (l *TileLayout) Set(x, y int, kind TileKind) {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return
	}
	l.kinds[y*l.Width+x] = kind
}

// MoveableObstacle is a dynamic object that blocks every cell its bounds
// overlap.
type MoveableObstacle struct {
	ID     string    `json:"id"`
	Bounds orb.Bound `json:"bounds"`
}

// BuildCostGrid derives a room's cost grid from its static layout and the
// moveable obstacles currently inside it. The layout is not modified.
func BuildCostGrid(layout *TileLayout, obstacles []MoveableObstacle, tf GridTransform, penalties PenaltyConfig) *CostGrid {
	grid := NewCostGrid(layout.Width, layout.Height)

	for y := 0; y < layout.Height; y++ {
		for x := 0; x < layout.Width; x++ {
			penalty := penalties.Default
			switch layout.At(x, y) {
			case TileBlocking:
				penalty = 0
			case TilePreferred:
				penalty = penalties.Preferred
			}
			grid.cells[y*grid.width+x] = penalty
		}
	}

	for _, obstacle := range obstacles {
		lo, hi := tf.CellRange(obstacle.Bounds, grid.width, grid.height)
		for y := max(lo.Y, 0); y <= min(hi.Y, grid.height-1); y++ {
			for x := max(lo.X, 0); x <= min(hi.X, grid.width-1); x++ {
				grid.cells[y*grid.width+x] = 0
			}
		}
	}

	return grid
}

package main

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Path is a stack of world-space waypoints. Popping yields the waypoints in
// start-to-goal order.
type Path struct {
	// Cells lists the room-local cells from start to goal.
	Cells []Cell
	// Cost is the search cost of the goal: step distances plus the penalty
	// of every cell entered.
	Cost int
	// Distance is the octile step distance alone.
	Distance int

	stack []orb.Point // top of stack is the last element
}

// buildMovementPath walks predecessor links back from the goal node,
// pushing each cell centre so the start ends up on top.
func buildMovementPath(target *SearchNode, tf GridTransform) (*Path, error) {
	if target == nil || !tf.Valid() {
		return nil, fmt.Errorf("movement path from nil node or grid: %w", ErrInvalidPathInput)
	}

	path := &Path{Cost: target.CostFromStart()}

	for node := target; node != nil; node = node.Predecessor {
		path.stack = append(path.stack, tf.CellToWorld(node.Cell))
		path.Cells = append(path.Cells, node.Cell)
	}

	// Cells are collected goal first
	for i, j := 0, len(path.Cells)-1; i < j; i, j = i+1, j-1 {
		path.Cells[i], path.Cells[j] = path.Cells[j], path.Cells[i]
	}
	for i := 0; i < len(path.Cells)-1; i++ {
		path.Distance += OctileDistance(path.Cells[i], path.Cells[i+1])
	}

	return path, nil
}

// Len returns the number of waypoints left on the stack.
func (p *Path) Len() int {
	return len(p.stack)
}

// Peek returns the next waypoint without removing it.
func (p *Path) Peek() (orb.Point, bool) {
	if len(p.stack) == 0 {
		return orb.Point{}, false
	}
	return p.stack[len(p.stack)-1], true
}

// Pop removes and returns the next waypoint.
func (p *Path) Pop() (orb.Point, bool) {
	wp, ok := p.Peek()
	if ok {
		p.stack = p.stack[:len(p.stack)-1]
	}
	return wp, ok
}

// Waypoints returns the remaining waypoints in travel order without
// consuming them.
func (p *Path) Waypoints() []orb.Point {
	out := make([]orb.Point, 0, len(p.stack))
	for i := len(p.stack) - 1; i >= 0; i-- {
		out = append(out, p.stack[i])
	}
	return out
}

// FeatureCollection returns the remaining waypoints as a GeoJSON line
// string, or a single point when only one waypoint is left. A positive
// epsilon drops waypoints closer than epsilon to the simplified line.
func (p *Path) FeatureCollection(roomID string, epsilon float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	waypoints := SimplifyWaypoints(p.Waypoints(), epsilon)
	var feature *geojson.Feature
	switch len(waypoints) {
	case 0:
		return fc
	case 1:
		feature = geojson.NewFeature(waypoints[0])
	default:
		feature = geojson.NewFeature(orb.LineString(waypoints))
	}

	feature.Properties["room"] = roomID
	feature.Properties["cost"] = p.Cost
	feature.Properties["distance"] = p.Distance
	fc.Append(feature)
	return fc
}

package main

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyWaypoints reduces a waypoint line using Douglas-Peucker. The first
// and last waypoints are always kept. epsilon is in world units; values <= 0
// return the line unchanged.
func SimplifyWaypoints(waypoints []orb.Point, epsilon float64) []orb.Point {
	if len(waypoints) <= 2 || epsilon <= 0 {
		return waypoints
	}

	line := orb.LineString(append([]orb.Point(nil), waypoints...))
	simplified, ok := simplify.DouglasPeucker(epsilon).Simplify(line).(orb.LineString)
	if !ok {
		return waypoints
	}
	return []orb.Point(simplified)
}

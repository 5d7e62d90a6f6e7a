package main

import (
	"fmt"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// ObstacleEntry wraps a moveable obstacle for R-tree storage
type ObstacleEntry struct {
	Obstacle MoveableObstacle
	BBox     rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (o *ObstacleEntry) Bounds() rtreego.Rect {
	return o.BBox
}

// ObstacleIndex manages moveable obstacle queries. It is safe for
// concurrent use.
type ObstacleIndex struct {
	mu      sync.RWMutex
	tree    *rtreego.Rtree
	entries map[string]*ObstacleEntry
}

// NewObstacleIndex creates an empty index
func NewObstacleIndex(cfg SpatialIndexConfig) *ObstacleIndex {
	return &ObstacleIndex{
		tree:    rtreego.NewTree(2, cfg.MinChildren, cfg.MaxChildren), // 2D
		entries: make(map[string]*ObstacleEntry),
	}
}

// Insert adds an obstacle, replacing any obstacle with the same ID
func (si *ObstacleIndex) Insert(obstacle MoveableObstacle) error {
	bbox, err := boundToRect(obstacle.Bounds)
	if err != nil {
		return fmt.Errorf("obstacle %s: %w", obstacle.ID, err)
	}

	si.mu.Lock()
	defer si.mu.Unlock()

	if old, ok := si.entries[obstacle.ID]; ok {
		si.tree.Delete(old)
	}
	entry := &ObstacleEntry{Obstacle: obstacle, BBox: bbox}
	si.tree.Insert(entry)
	si.entries[obstacle.ID] = entry
	return nil
}

// Move updates the bounds of an existing obstacle
func (si *ObstacleIndex) Move(id string, bounds orb.Bound) error {
	si.mu.RLock()
	_, ok := si.entries[id]
	si.mu.RUnlock()
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrObstacleNotFound)
	}
	return si.Insert(MoveableObstacle{ID: id, Bounds: bounds})
}

// Remove deletes an obstacle from the index
func (si *ObstacleIndex) Remove(id string) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	entry, ok := si.entries[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrObstacleNotFound)
	}
	si.tree.Delete(entry)
	delete(si.entries, id)
	return nil
}

// Get returns the obstacle stored under id
func (si *ObstacleIndex) Get(id string) (MoveableObstacle, bool) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	entry, ok := si.entries[id]
	if !ok {
		return MoveableObstacle{}, false
	}
	return entry.Obstacle, true
}

func (si *ObstacleIndex) Len() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.entries)
}

// QueryRegion returns obstacles that intersect with the given bounding box
func (si *ObstacleIndex) QueryRegion(region orb.Bound) []MoveableObstacle {
	bbox, err := boundToRect(region)
	if err != nil {
		return []MoveableObstacle{}
	}

	si.mu.RLock()
	results := si.tree.SearchIntersect(bbox)
	si.mu.RUnlock()

	obstacles := make([]MoveableObstacle, 0, len(results))
	for _, item := range results {
		entry := item.(*ObstacleEntry)
		obstacles = append(obstacles, entry.Obstacle)
	}

	return obstacles
}

// minExtent keeps zero-width bounds representable; rtreego rejects
// rectangles with a zero length side.
const minExtent = 1e-9

// boundToRect converts an orb bound to an R-tree rectangle
func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	if b.Max.X() < b.Min.X() || b.Max.Y() < b.Min.Y() {
		return rtreego.Rect{}, fmt.Errorf("inverted bounds %v: %w", b, ErrInvalidBounds)
	}

	return rtreego.NewRect(
		rtreego.Point{b.Min.X(), b.Min.Y()},
		[]float64{
			max(b.Max.X()-b.Min.X(), minExtent),
			max(b.Max.Y()-b.Min.Y(), minExtent),
		},
	)
}

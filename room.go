package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// GridEvent is published every time a room's cost grid is rebuilt.
type GridEvent struct {
	Room    string `json:"room"`
	Version uint64 `json:"version"`
}

// Room owns the cost grid of one dungeon room and rebuilds it whenever its
// moveable obstacles change. Searches hold the read lock, so a rebuild never
// overlaps a search in progress.
type Room struct {
	ID string

	logger    *zap.Logger
	penalties PenaltyConfig
	indexCfg  SpatialIndexConfig

	mu          sync.RWMutex
	lower       Cell
	upper       Cell
	transform   GridTransform
	layout      *TileLayout
	obstacles   *ObstacleIndex
	fromLayout  map[string]bool // obstacles declared by the template
	grid        *CostGrid
	version     uint64
	subscribers map[chan GridEvent]struct{}
}

// NewRoom builds a room from a template and computes its first cost grid.
func NewRoom(tmpl RoomTemplate, cfg Config, logger *zap.Logger) (*Room, error) {
	r := &Room{
		ID:          tmpl.ID,
		logger:      logger.With(zap.String("room", tmpl.ID)),
		penalties:   cfg.Penalties,
		indexCfg:    cfg.SpatialIndex,
		obstacles:   NewObstacleIndex(cfg.SpatialIndex),
		fromLayout:  make(map[string]bool),
		subscribers: make(map[chan GridEvent]struct{}),
	}
	if err := r.ApplyTemplate(tmpl); err != nil {
		return nil, err
	}
	return r, nil
}

// ApplyTemplate replaces the room's static layout and template obstacles.
// Obstacles placed at runtime are kept.
func (r *Room) ApplyTemplate(tmpl RoomTemplate) error {
	if tmpl.ID != r.ID {
		return fmt.Errorf("template %q applied to room %q: %w", tmpl.ID, r.ID, ErrInvalidRoom)
	}
	if err := tmpl.Validate(); err != nil {
		return err
	}

	width, height := tmpl.Size()
	layout, err := ParseTileRows(width, height, tmpl.Tiles)
	if err != nil {
		return fmt.Errorf("room %s: %w", tmpl.ID, err)
	}

	index := NewObstacleIndex(r.indexCfg)
	fromLayout := make(map[string]bool, len(tmpl.Obstacles))
	for i, o := range tmpl.Obstacles {
		id := o.ID
		if id == "" {
			id = fmt.Sprintf("%s-layout-%d", tmpl.ID, i)
		}
		if err := index.Insert(MoveableObstacle{ID: id, Bounds: o.Bound()}); err != nil {
			return fmt.Errorf("room %s: %w", tmpl.ID, err)
		}
		fromLayout[id] = true
	}

	r.mu.Lock()
	for _, o := range r.obstacles.QueryRegion(everywhere) {
		if r.fromLayout[o.ID] || fromLayout[o.ID] {
			continue
		}
		if err := index.Insert(o); err != nil {
			r.logger.Warn("⚠️  dropped runtime obstacle on reload", zap.String("obstacle", o.ID), zap.Error(err))
		}
	}
	r.lower = tmpl.LowerBounds
	r.upper = tmpl.UpperBounds
	r.transform = NewGridTransform(tmpl.CellSize, orb.Point(tmpl.Origin), tmpl.LowerBounds)
	r.layout = layout
	r.obstacles = index
	r.fromLayout = fromLayout
	event := r.rebuildLocked()
	r.mu.Unlock()

	r.publish(event)
	return nil
}

// everywhere is a query region covering any realistic dungeon.
var everywhere = orb.Bound{Min: orb.Point{-1e12, -1e12}, Max: orb.Point{1e12, 1e12}}

// rebuildLocked recomputes the cost grid. r.mu must be held for writing.
func (r *Room) rebuildLocked() GridEvent {
	region := r.transform.RoomBound(r.layout.Width, r.layout.Height)
	inside := r.obstacles.QueryRegion(region)

	r.grid = BuildCostGrid(r.layout, inside, r.transform, r.penalties)
	r.version++

	r.logger.Debug("🧱 cost grid rebuilt",
		zap.Int("width", r.grid.Width()),
		zap.Int("height", r.grid.Height()),
		zap.Int("obstacles", len(inside)),
		zap.Uint64("version", r.version))

	return GridEvent{Room: r.ID, Version: r.version}
}

// Bounds returns the template lower and upper bounds, both inclusive.
func (r *Room) Bounds() (lower, upper Cell) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lower, r.upper
}

// Transform returns the room's grid-to-world transform.
func (r *Room) Transform() GridTransform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.transform
}

// Grid returns the current cost grid and its version. Grids are replaced on
// rebuild, never modified, so the result stays valid after the call.
func (r *Room) Grid() (*CostGrid, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.grid, r.version
}

// BuildPath implements PathFinder for template cells: start and goal are
// given in the room template's coordinates, not room-local ones.
func (r *Room) BuildPath(start, goal Cell) (*Path, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	path, ok, err := AStarPathOnGrid(r.grid, r.transform, start.Sub(r.lower), goal.Sub(r.lower))
	if errors.Is(err, ErrInvalidPathInput) {
		r.logger.Error("❌ path search aborted", zap.Error(err))
	}
	return path, ok, err
}

// WorldToCell returns the template cell containing a world position.
func (r *Room) WorldToCell(p orb.Point) Cell {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.transform.WorldToCell(p).Add(r.lower)
}

// PlaceObstacle adds a moveable obstacle and rebuilds the grid.
func (r *Room) PlaceObstacle(bounds orb.Bound) (MoveableObstacle, error) {
	obstacle := MoveableObstacle{ID: uuid.NewString(), Bounds: bounds}

	r.mu.Lock()
	if err := r.obstacles.Insert(obstacle); err != nil {
		r.mu.Unlock()
		return MoveableObstacle{}, err
	}
	event := r.rebuildLocked()
	r.mu.Unlock()

	r.publish(event)
	return obstacle, nil
}

// MoveObstacle changes an obstacle's bounds and rebuilds the grid.
func (r *Room) MoveObstacle(id string, bounds orb.Bound) error {
	r.mu.Lock()
	if err := r.obstacles.Move(id, bounds); err != nil {
		r.mu.Unlock()
		return err
	}
	event := r.rebuildLocked()
	r.mu.Unlock()

	r.publish(event)
	return nil
}

// RemoveObstacle deletes an obstacle and rebuilds the grid.
func (r *Room) RemoveObstacle(id string) error {
	r.mu.Lock()
	if err := r.obstacles.Remove(id); err != nil {
		r.mu.Unlock()
		return err
	}
	delete(r.fromLayout, id)
	event := r.rebuildLocked()
	r.mu.Unlock()

	r.publish(event)
	return nil
}

// Obstacles lists the room's moveable obstacles ordered by ID.
func (r *Room) Obstacles() []MoveableObstacle {
	r.mu.RLock()
	obstacles := r.obstacles.QueryRegion(everywhere)
	r.mu.RUnlock()

	sort.Slice(obstacles, func(i, j int) bool { return obstacles[i].ID < obstacles[j].ID })
	return obstacles
}

// Subscribe returns a channel receiving grid events and a function to stop
// the subscription. Slow subscribers miss events rather than block rebuilds.
func (r *Room) Subscribe() (<-chan GridEvent, func()) {
	ch := make(chan GridEvent, 8)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subscribers, ch)
			r.mu.Unlock()
			close(ch)
		})
	}
}

func (r *Room) publish(event GridEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for ch := range r.subscribers {
		select {
		case ch <- event:
		default:
			r.logger.Warn("⚠️  dropped grid event for slow subscriber", zap.Uint64("version", event.Version))
		}
	}
}

// RoomRegistry holds every loaded room. Pass it to whoever needs rooms.
type RoomRegistry struct {
	cfg    Config
	logger *zap.Logger

	mu    sync.RWMutex
	rooms map[string]*Room
	files map[string]string // template file -> room ID
}

func NewRoomRegistry(cfg Config, logger *zap.Logger) *RoomRegistry {
	return &RoomRegistry{
		cfg:    cfg,
		logger: logger,
		rooms:  make(map[string]*Room),
		files:  make(map[string]string),
	}
}

// Upsert creates a room from tmpl, or applies tmpl to the existing room with
// the same ID.
func (rr *RoomRegistry) Upsert(tmpl RoomTemplate) (*Room, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if room, ok := rr.rooms[tmpl.ID]; ok {
		if err := room.ApplyTemplate(tmpl); err != nil {
			return nil, err
		}
		rr.logger.Info("🔄 room reloaded", zap.String("room", tmpl.ID))
		return room, nil
	}

	room, err := NewRoom(tmpl, rr.cfg, rr.logger)
	if err != nil {
		return nil, err
	}
	rr.rooms[tmpl.ID] = room
	rr.logger.Info("✅ room loaded", zap.String("room", tmpl.ID))
	return room, nil
}

// UpsertFile is Upsert for a template read from file. The file is
// remembered so RemoveFile can drop the room when the file goes away.
func (rr *RoomRegistry) UpsertFile(file string, tmpl RoomTemplate) (*Room, error) {
	room, err := rr.Upsert(tmpl)
	if err != nil {
		return nil, err
	}

	rr.mu.Lock()
	rr.files[filepath.Clean(file)] = tmpl.ID
	rr.mu.Unlock()
	return room, nil
}

// RemoveFile forgets file and drops the room it was serving, unless another
// file still serves the same room. removed reports whether a room was
// dropped.
func (rr *RoomRegistry) RemoveFile(file string) (id string, removed bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	file = filepath.Clean(file)
	id, ok := rr.files[file]
	if !ok {
		return "", false
	}
	delete(rr.files, file)

	for _, other := range rr.files {
		if other == id {
			return id, false
		}
	}
	delete(rr.rooms, id)
	return id, true
}

// Get returns the room with the given ID.
func (rr *RoomRegistry) Get(id string) (*Room, error) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	room, ok := rr.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", id, ErrRoomNotFound)
	}
	return room, nil
}

// IDs returns the loaded room IDs in sorted order.
func (rr *RoomRegistry) IDs() []string {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	ids := make([]string, 0, len(rr.rooms))
	for id := range rr.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (rr *RoomRegistry) Len() int {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return len(rr.rooms)
}

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type PathRequest struct {
	Start Cell `json:"start"`
	Goal  Cell `json:"goal"`
}

type Waypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PathResponse struct {
	Path     []Waypoint `json:"path"`
	Cells    []Cell     `json:"cells,omitempty"`
	Success  bool       `json:"success"`
	Message  string     `json:"message,omitempty"`
	Cost     int        `json:"cost"`
	Distance int        `json:"distance"`
}

type GridResponse struct {
	Room    string  `json:"room"`
	Lower   Cell    `json:"lowerBounds"`
	Upper   Cell    `json:"upperBounds"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Version uint64  `json:"version"`
	Rows    [][]int `json:"rows"`
}

// Server exposes the room registry over HTTP.
type Server struct {
	registry *RoomRegistry
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewServer(registry *RoomRegistry, logger *zap.Logger) *Server {
	return &Server{
		registry: registry,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Routes returns the service router.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.listRoomsHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{id}/grid", s.gridHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{id}/path", s.pathHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/rooms/{id}/path.geojson", s.pathGeoJSONHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/rooms/{id}/obstacles", s.listObstaclesHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{id}/obstacles", s.placeObstacleHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/rooms/{id}/obstacles/{obstacleID}", s.moveObstacleHandler).Methods(http.MethodPut, http.MethodOptions)
	r.HandleFunc("/rooms/{id}/obstacles/{obstacleID}", s.removeObstacleHandler).Methods(http.MethodDelete, http.MethodOptions)
	r.HandleFunc("/rooms/{id}/events", s.eventsHandler).Methods(http.MethodGet)

	return r
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrObstacleNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrOutOfRange), errors.Is(err, ErrInvalidBounds), errors.Is(err, ErrInvalidRoom):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) room(w http.ResponseWriter, r *http.Request) (*Room, bool) {
	room, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		s.logger.Warn("❌ unknown room", zap.Error(err))
		http.Error(w, err.Error(), statusFor(err))
		return nil, false
	}
	return room, true
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	numRooms := s.registry.Len()

	status := "ready"
	if numRooms == 0 {
		status = "waiting for rooms"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"numRooms": numRooms,
	})
}

// GET /rooms
func (s *Server) listRoomsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rooms": s.registry.IDs(),
	})
}

// GET /rooms/{id}/grid - current cost grid, row 0 first
func (s *Server) gridHandler(w http.ResponseWriter, r *http.Request) {
	room, ok := s.room(w, r)
	if !ok {
		return
	}

	grid, version := room.Grid()
	lower, upper := room.Bounds()
	writeJSON(w, http.StatusOK, GridResponse{
		Room:    room.ID,
		Lower:   lower,
		Upper:   upper,
		Width:   grid.Width(),
		Height:  grid.Height(),
		Version: version,
		Rows:    grid.Rows(),
	})
}

// findPath decodes a path request and runs the search. It writes the error
// response itself and reports whether the caller should continue.
func (s *Server) findPath(w http.ResponseWriter, r *http.Request) (*Room, *Path, bool) {
	room, ok := s.room(w, r)
	if !ok {
		return nil, nil, false
	}

	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("❌ Invalid request body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, nil, false
	}

	log := s.logger.With(
		zap.String("room", room.ID),
		zap.Int("startX", req.Start.X), zap.Int("startY", req.Start.Y),
		zap.Int("goalX", req.Goal.X), zap.Int("goalY", req.Goal.Y))
	log.Info("📍 Path request received")

	start := time.Now()
	path, found, err := room.BuildPath(req.Start, req.Goal)
	if err != nil {
		log.Warn("❌ Path request rejected", zap.Error(err))
		http.Error(w, err.Error(), statusFor(err))
		return nil, nil, false
	}

	if !found {
		log.Info("❌ No path found", zap.Duration("elapsed", time.Since(start)))
		return room, nil, true
	}

	log.Info("✅ Path found",
		zap.Int("waypoints", path.Len()),
		zap.Int("cost", path.Cost),
		zap.Int("distance", path.Distance),
		zap.Duration("elapsed", time.Since(start)))
	return room, path, true
}

// POST /rooms/{id}/path - Compute a path between two template cells
func (s *Server) pathHandler(w http.ResponseWriter, r *http.Request) {
	_, path, ok := s.findPath(w, r)
	if !ok {
		return
	}

	if path == nil {
		writeJSON(w, http.StatusOK, PathResponse{
			Path:    []Waypoint{},
			Success: false,
			Message: "No path found",
		})
		return
	}

	waypoints := make([]Waypoint, 0, path.Len())
	for _, p := range path.Waypoints() {
		waypoints = append(waypoints, Waypoint{X: p.X(), Y: p.Y()})
	}

	writeJSON(w, http.StatusOK, PathResponse{
		Path:     waypoints,
		Cells:    path.Cells,
		Success:  true,
		Cost:     path.Cost,
		Distance: path.Distance,
	})
}

// POST /rooms/{id}/path.geojson?simplify=<epsilon> - Same as /path, as a
// GeoJSON feature collection
func (s *Server) pathGeoJSONHandler(w http.ResponseWriter, r *http.Request) {
	var epsilon float64
	if v := r.URL.Query().Get("simplify"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			http.Error(w, "simplify must be a non-negative number", http.StatusBadRequest)
			return
		}
		epsilon = parsed
	}

	room, path, ok := s.findPath(w, r)
	if !ok {
		return
	}

	if path == nil {
		http.Error(w, "No path found", http.StatusNotFound)
		return
	}

	data, err := path.FeatureCollection(room.ID, epsilon).MarshalJSON()
	if err != nil {
		s.logger.Error("❌ failed to marshal path", zap.Error(err))
		http.Error(w, "failed to marshal path", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// GET /rooms/{id}/obstacles
func (s *Server) listObstaclesHandler(w http.ResponseWriter, r *http.Request) {
	room, ok := s.room(w, r)
	if !ok {
		return
	}

	obstacles := room.Obstacles()
	specs := make([]ObstacleSpec, 0, len(obstacles))
	for _, o := range obstacles {
		specs = append(specs, ObstacleSpec{ID: o.ID, Min: [2]float64(o.Bounds.Min), Max: [2]float64(o.Bounds.Max)})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"obstacles": specs,
	})
}

// POST /rooms/{id}/obstacles - Place a moveable obstacle
func (s *Server) placeObstacleHandler(w http.ResponseWriter, r *http.Request) {
	room, ok := s.room(w, r)
	if !ok {
		return
	}

	var req ObstacleSpec
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	obstacle, err := room.PlaceObstacle(req.Bound())
	if err != nil {
		s.logger.Warn("❌ Failed to place obstacle", zap.String("room", room.ID), zap.Error(err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	_, version := room.Grid()
	s.logger.Info("📦 Obstacle placed", zap.String("room", room.ID), zap.String("obstacle", obstacle.ID))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      obstacle.ID,
		"version": version,
	})
}

// PUT /rooms/{id}/obstacles/{obstacleID} - Move a moveable obstacle
func (s *Server) moveObstacleHandler(w http.ResponseWriter, r *http.Request) {
	room, ok := s.room(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["obstacleID"]

	var req ObstacleSpec
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := room.MoveObstacle(id, req.Bound()); err != nil {
		s.logger.Warn("❌ Failed to move obstacle", zap.String("room", room.ID), zap.String("obstacle", id), zap.Error(err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	_, version := room.Grid()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      id,
		"version": version,
	})
}

// DELETE /rooms/{id}/obstacles/{obstacleID}
func (s *Server) removeObstacleHandler(w http.ResponseWriter, r *http.Request) {
	room, ok := s.room(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["obstacleID"]

	if err := room.RemoveObstacle(id); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /rooms/{id}/events - websocket stream of grid rebuilds
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	room, ok := s.room(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", zap.String("room", room.ID), zap.Error(err))
		return
	}
	defer conn.Close()

	events, unsubscribe := room.Subscribe()
	defer unsubscribe()

	// Reader loop: notices the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_, version := room.Grid()
	if err := conn.WriteJSON(GridEvent{Room: room.ID, Version: version}); err != nil {
		return
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				s.logger.Debug("event stream closed", zap.String("room", room.ID), zap.Error(err))
				return
			}
		case <-closed:
			return
		}
	}
}

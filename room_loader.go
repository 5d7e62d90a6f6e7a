package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RoomTemplate is the on-disk description of a room.
type RoomTemplate struct {
	ID          string         `yaml:"id"`
	LowerBounds Cell           `yaml:"lowerBounds"`
	UpperBounds Cell           `yaml:"upperBounds"`
	CellSize    float64        `yaml:"cellSize"`
	Origin      [2]float64     `yaml:"origin"`
	Tiles       []string       `yaml:"tiles"`
	Obstacles   []ObstacleSpec `yaml:"obstacles"`
}

// ObstacleSpec is a world-space box in a room template or API request.
type ObstacleSpec struct {
	ID  string     `yaml:"id,omitempty" json:"id,omitempty"`
	Min [2]float64 `yaml:"min" json:"min"`
	Max [2]float64 `yaml:"max" json:"max"`
}

func (s ObstacleSpec) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point(s.Min), Max: orb.Point(s.Max)}
}

// Size returns the room's width and height in cells. Bounds are inclusive.
func (t RoomTemplate) Size() (width, height int) {
	return t.UpperBounds.X - t.LowerBounds.X + 1, t.UpperBounds.Y - t.LowerBounds.Y + 1
}

// Validate checks the template describes a usable room.
func (t RoomTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("room without id: %w", ErrInvalidRoom)
	}
	width, height := t.Size()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("room %s has bounds %v..%v: %w", t.ID, t.LowerBounds, t.UpperBounds, ErrInvalidRoom)
	}
	if t.CellSize <= 0 {
		return fmt.Errorf("room %s has cell size %v: %w", t.ID, t.CellSize, ErrInvalidRoom)
	}
	return nil
}

// ParseRoomTemplate decodes a YAML room template. A missing cell size
// defaults to one world unit.
func ParseRoomTemplate(data []byte) (RoomTemplate, error) {
	tmpl := RoomTemplate{CellSize: 1}
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return RoomTemplate{}, fmt.Errorf("failed to unmarshal room: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return RoomTemplate{}, err
	}
	return tmpl, nil
}

// LoadRoomTemplate reads one room template file.
func LoadRoomTemplate(filename string) (RoomTemplate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return RoomTemplate{}, fmt.Errorf("failed to read file: %w", err)
	}
	tmpl, err := ParseRoomTemplate(data)
	if err != nil {
		return RoomTemplate{}, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return tmpl, nil
}

// loadRoomsFromDir loads every YAML room template in dir into the registry.
// Unreadable or invalid files are logged and skipped.
func loadRoomsFromDir(dir string, registry *RoomRegistry, logger *zap.Logger) (int, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	logger.Info("Loading rooms from YAML files...", zap.String("dir", dir), zap.Int("files", len(files)))

	loaded := 0
	for _, file := range files {
		if err := loadRoomFile(file, registry); err != nil {
			logger.Warn("⚠️  Failed to load room", zap.String("file", file), zap.Error(err))
			continue
		}
		loaded++
	}

	logger.Info("Total rooms loaded", zap.Int("rooms", loaded))
	return loaded, nil
}

func loadRoomFile(file string, registry *RoomRegistry) error {
	tmpl, err := LoadRoomTemplate(file)
	if err != nil {
		return err
	}
	_, err = registry.UpsertFile(file, tmpl)
	return err
}

func isRoomFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

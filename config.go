package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Movement penalties the dungeon rooms were tuned with.
const (
	DefaultMovementPenalty   = 40
	PreferredMovementPenalty = 1
)

// Config holds the service settings read from config.yaml.
type Config struct {
	ListenAddr   string             `yaml:"listenAddr"`
	RoomsDir     string             `yaml:"roomsDir"`
	WatchRooms   bool               `yaml:"watchRooms"`
	Penalties    PenaltyConfig      `yaml:"penalties"`
	SpatialIndex SpatialIndexConfig `yaml:"spatialIndex"`
	Log          LogConfig          `yaml:"log"`
}

// PenaltyConfig sets the cost of entering neutral and preferred cells.
type PenaltyConfig struct {
	Default   int `yaml:"default"`
	Preferred int `yaml:"preferred"`
}

// SpatialIndexConfig sizes the R-tree nodes of the obstacle index.
type SpatialIndexConfig struct {
	MinChildren int `yaml:"minChildren"`
	MaxChildren int `yaml:"maxChildren"`
}

type LogConfig struct {
	Development bool `yaml:"development"`
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() Config {
	return Config{
		ListenAddr: ":8080",
		RoomsDir:   "rooms",
		WatchRooms: true,
		Penalties: PenaltyConfig{
			Default:   DefaultMovementPenalty,
			Preferred: PreferredMovementPenalty,
		},
		SpatialIndex: SpatialIndexConfig{
			MinChildren: 25,
			MaxChildren: 50,
		},
	}
}

// LoadConfig reads filename over the defaults. A missing file is not an error.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the grid builder and index cannot work with.
func (c Config) Validate() error {
	if c.Penalties.Default <= 0 || c.Penalties.Preferred <= 0 {
		return fmt.Errorf("penalties must be positive (default=%d, preferred=%d)",
			c.Penalties.Default, c.Penalties.Preferred)
	}
	if c.SpatialIndex.MinChildren <= 0 || c.SpatialIndex.MaxChildren < c.SpatialIndex.MinChildren {
		return fmt.Errorf("invalid spatial index sizing (min=%d, max=%d)",
			c.SpatialIndex.MinChildren, c.SpatialIndex.MaxChildren)
	}
	return nil
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 40, cfg.Penalties.Default)
	assert.Equal(t, 1, cfg.Penalties.Preferred)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listenAddr: ":9090"
roomsDir: /srv/rooms
watchRooms: false
penalties:
  default: 20
log:
  development: true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/srv/rooms", cfg.RoomsDir)
	assert.False(t, cfg.WatchRooms)
	assert.Equal(t, 20, cfg.Penalties.Default)
	assert.Equal(t, PreferredMovementPenalty, cfg.Penalties.Preferred)
	assert.Equal(t, 25, cfg.SpatialIndex.MinChildren)
	assert.True(t, cfg.Log.Development)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("penalties:\n  preferred: 0\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("spatialIndex: {minChildren: 10, maxChildren: 5}\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

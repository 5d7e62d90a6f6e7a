package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitReloaded(t *testing.T, w *RoomWatcher) string {
	t.Helper()
	select {
	case name := <-w.Reloaded:
		return name
	case <-time.After(2 * time.Second):
		t.Fatal("room file was not reloaded")
		return ""
	}
}

func TestRoomWatcher_ReloadsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	registry := NewRoomRegistry(DefaultConfig(), zap.NewNop())

	watcher, err := NewRoomWatcher(registry, zap.NewNop(), dir)
	require.NoError(t, err)
	defer watcher.Close()

	path := writeRoomFile(t, dir, "nook.yaml", "id: nook\nupperBounds: {x: 2, y: 2}\n")
	assert.Equal(t, path, waitReloaded(t, watcher))

	room, err := registry.Get("nook")
	require.NoError(t, err)
	grid, _ := room.Grid()
	assert.True(t, grid.Walkable(1, 1))

	// Past the debounce window.
	time.Sleep(2 * reloadDebounce)
	writeRoomFile(t, dir, "nook.yaml", "id: nook\nupperBounds: {x: 2, y: 2}\ntiles: [\"...\", \".#.\", \"...\"]\n")
	waitReloaded(t, watcher)

	grid, _ = room.Grid()
	assert.False(t, grid.Walkable(1, 1))
}

func TestRoomWatcher_LastSaveWins(t *testing.T) {
	dir := t.TempDir()
	registry := NewRoomRegistry(DefaultConfig(), zap.NewNop())

	watcher, err := NewRoomWatcher(registry, zap.NewNop(), dir)
	require.NoError(t, err)
	defer watcher.Close()

	writeRoomFile(t, dir, "nook.yaml", "id: nook\nupperBounds: {x: 2, y: 2}\n")
	waitReloaded(t, watcher)

	room, err := registry.Get("nook")
	require.NoError(t, err)

	writeRoomFile(t, dir, "nook.yaml", "id: nook\nupperBounds: {x: 2, y: 2}\ntiles: [\"#..\", \"...\", \"...\"]\n")
	time.Sleep(20 * time.Millisecond)
	writeRoomFile(t, dir, "nook.yaml", "id: nook\nupperBounds: {x: 2, y: 2}\ntiles: [\"...\", \".#.\", \"...\"]\n")
	waitReloaded(t, watcher)

	centreBlocked := func() bool {
		grid, _ := room.Grid()
		return !grid.Walkable(1, 1) && grid.Walkable(0, 2)
	}
	assert.Eventually(t, centreBlocked, 2*time.Second, 10*time.Millisecond)

	time.Sleep(3 * reloadDebounce)
	assert.True(t, centreBlocked())
}

func TestRoomWatcher_RemovedFileDropsRoom(t *testing.T) {
	dir := t.TempDir()
	registry := NewRoomRegistry(DefaultConfig(), zap.NewNop())

	watcher, err := NewRoomWatcher(registry, zap.NewNop(), dir)
	require.NoError(t, err)
	defer watcher.Close()

	path := writeRoomFile(t, dir, "nook.yaml", "id: nook\nupperBounds: {x: 2, y: 2}\n")
	waitReloaded(t, watcher)
	require.Equal(t, 1, registry.Len())

	require.NoError(t, os.Remove(path))
	assert.Equal(t, path, waitReloaded(t, watcher))

	_, err = registry.Get("nook")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomWatcher_RenamedFileDropsRoom(t *testing.T) {
	dir := t.TempDir()
	registry := NewRoomRegistry(DefaultConfig(), zap.NewNop())

	watcher, err := NewRoomWatcher(registry, zap.NewNop(), dir)
	require.NoError(t, err)
	defer watcher.Close()

	path := writeRoomFile(t, dir, "nook.yaml", "id: nook\nupperBounds: {x: 2, y: 2}\n")
	waitReloaded(t, watcher)

	require.NoError(t, os.Rename(path, filepath.Join(dir, "nook.yaml.bak")))
	assert.Equal(t, path, waitReloaded(t, watcher))
	assert.Zero(t, registry.Len())
}

func TestRoomWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	registry := NewRoomRegistry(DefaultConfig(), zap.NewNop())

	watcher, err := NewRoomWatcher(registry, zap.NewNop(), dir)
	require.NoError(t, err)

	writeRoomFile(t, dir, "readme.md", "id: nope")

	select {
	case name := <-watcher.Reloaded:
		t.Fatalf("unexpected reload of %s", name)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, watcher.Close())
	require.NoError(t, watcher.Close())
	assert.Zero(t, registry.Len())
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cryptYAML = `
id: crypt
lowerBounds: {x: -4, y: -2}
upperBounds: {x: 3, y: 2}
cellSize: 0.5
origin: [100, 50]
tiles:
  - "########"
  - "#..==..#"
  - "#......#"
  - "#..#...#"
  - "########"
obstacles:
  - id: coffin
    min: [99, 50]
    max: [99.5, 50.5]
`

func writeRoomFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseRoomTemplate(t *testing.T) {
	tmpl, err := ParseRoomTemplate([]byte(cryptYAML))
	require.NoError(t, err)

	assert.Equal(t, "crypt", tmpl.ID)
	assert.Equal(t, Cell{-4, -2}, tmpl.LowerBounds)
	assert.Equal(t, Cell{3, 2}, tmpl.UpperBounds)
	assert.Equal(t, 0.5, tmpl.CellSize)
	assert.Equal(t, [2]float64{100, 50}, tmpl.Origin)
	require.Len(t, tmpl.Obstacles, 1)
	assert.Equal(t, orb.Bound{Min: orb.Point{99, 50}, Max: orb.Point{99.5, 50.5}}, tmpl.Obstacles[0].Bound())

	w, h := tmpl.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 5, h)
}

func TestParseRoomTemplate_Defaults(t *testing.T) {
	tmpl, err := ParseRoomTemplate([]byte("id: nook\nupperBounds: {x: 1, y: 1}\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, tmpl.CellSize)
}

func TestParseRoomTemplate_Invalid(t *testing.T) {
	tests := map[string]string{
		"no id":           "upperBounds: {x: 1, y: 1}\n",
		"inverted bounds": "id: x\nlowerBounds: {x: 3, y: 0}\nupperBounds: {x: 1, y: 1}\n",
		"bad cell size":   "id: x\nupperBounds: {x: 1, y: 1}\ncellSize: -2\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRoomTemplate([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidRoom)
		})
	}

	_, err := ParseRoomTemplate([]byte("id: [unclosed"))
	assert.Error(t, err)
}

func TestLoadRoomsFromDir(t *testing.T) {
	dir := t.TempDir()
	writeRoomFile(t, dir, "crypt.yaml", cryptYAML)
	writeRoomFile(t, dir, "nook.yml", "id: nook\nupperBounds: {x: 2, y: 2}\n")
	writeRoomFile(t, dir, "broken.yaml", "id: broken\ncellSize: 0\n")
	writeRoomFile(t, dir, "notes.txt", "not a room")

	registry := NewRoomRegistry(DefaultConfig(), zap.NewNop())
	loaded, err := loadRoomsFromDir(dir, registry, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2, loaded)
	assert.Equal(t, []string{"crypt", "nook"}, registry.IDs())

	crypt, err := registry.Get("crypt")
	require.NoError(t, err)

	grid, _ := crypt.Grid()
	assert.Equal(t, 8, grid.Width())
	assert.Equal(t, 5, grid.Height())

	// Coffin covers template cell (-2, 0), local (2, 2).
	assert.False(t, grid.Walkable(2, 2))
	p, err := grid.Penalty(3, 3)
	require.NoError(t, err)
	assert.Equal(t, PreferredMovementPenalty, p)

	path, ok, err := crypt.BuildPath(Cell{-3, -1}, Cell{2, 1})
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, path.Cells, Cell{3, 1})
}

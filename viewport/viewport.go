package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/questline/maptiles/pyramid"
)

// ErrUnknownZoom is returned when a requested zoom level does not exist
// in the manifest.
var ErrUnknownZoom = errors.New("unknown zoom level")

// View describes one camera rectangle. CenterX and CenterY are in
// native-resolution pixel coordinates, regardless of the requested
// zoom; WidthPx and HeightPx are the on-screen viewport extent at that
// zoom.
type View struct {
	CenterX  float64
	CenterY  float64
	WidthPx  uint32
	HeightPx uint32
	Zoom     uint32
	// Padding widens the result by whole rings of tiles, for prefetch.
	Padding uint32
}

// Tiles returns the coordinates of every tile the view touches, plus
// Padding rings around them, clamped to the level's grid. The result
// is ordered row-major and is never empty for a valid zoom: a view
// entirely outside the image still clamps to the nearest edge tile.
func Tiles(m *pyramid.Manifest, v View) ([]pyramid.Coord, error) {
	level, ok := m.Level(v.Zoom)
	if !ok {
		return nil, fmt.Errorf("%w: %d (%d levels)", ErrUnknownZoom, v.Zoom, len(m.ZoomLevels))
	}

	// Project the native-space center onto this level and take the
	// half-open pixel rectangle around it.
	cx := v.CenterX * level.ScaleFactor
	cy := v.CenterY * level.ScaleFactor
	minX := cx - float64(v.WidthPx)/2
	maxX := cx + float64(v.WidthPx)/2
	minY := cy - float64(v.HeightPx)/2
	maxY := cy + float64(v.HeightPx)/2

	ts := float64(m.TileSize)
	col0 := clampTile(math.Floor(minX/ts)-float64(v.Padding), level.GridWidth)
	col1 := clampTile(math.Ceil(maxX/ts)-1+float64(v.Padding), level.GridWidth)
	row0 := clampTile(math.Floor(minY/ts)-float64(v.Padding), level.GridHeight)
	row1 := clampTile(math.Ceil(maxY/ts)-1+float64(v.Padding), level.GridHeight)

	// A zero-extent view on a tile boundary still resolves the tile
	// the center sits in.
	if col1 < col0 {
		col1 = col0
	}
	if row1 < row0 {
		row1 = row0
	}

	out := make([]pyramid.Coord, 0, (row1-row0+1)*(col1-col0+1))
	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			out = append(out, pyramid.Coord{Zoom: v.Zoom, Col: col, Row: row})
		}
	}
	return out, nil
}

// clampTile clamps a fractional tile index into [0, grid).
func clampTile(idx float64, grid uint32) uint32 {
	if idx < 0 {
		return 0
	}
	if idx >= float64(grid) {
		return grid - 1
	}
	return uint32(idx)
}

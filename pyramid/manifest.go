package pyramid

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestName is the manifest file name inside a pyramid directory.
const ManifestName = "manifest.json"

// Coord addresses one tile. Zoom 0 is native resolution; higher zooms
// are progressively coarser. Col and Row are 0-based grid indices.
type Coord struct {
	Zoom uint32 `json:"zoom"`
	Col  uint32 `json:"col"`
	Row  uint32 `json:"row"`
}

// Level describes one zoom level's grid geometry.
type Level struct {
	Zoom        uint32  `json:"zoom"`
	GridWidth   uint32  `json:"gridWidth"`
	GridHeight  uint32  `json:"gridHeight"`
	ScaleFactor float64 `json:"scaleFactor"`
}

// Manifest is the immutable record describing a finalized pyramid. It
// is the sole contract between the builder and any tile consumer.
type Manifest struct {
	AssetID      string  `json:"assetId"`
	TileSize     uint32  `json:"tileSize"`
	ZoomLevels   []Level `json:"zoomLevels"`
	OriginWidth  uint32  `json:"originWidth"`
	OriginHeight uint32  `json:"originHeight"`
}

// Level returns the geometry for a zoom level.
func (m *Manifest) Level(zoom uint32) (Level, bool) {
	for _, l := range m.ZoomLevels {
		if l.Zoom == zoom {
			return l, true
		}
	}
	return Level{}, false
}

func (m *Manifest) validate() error {
	if m.TileSize == 0 {
		return fmt.Errorf("%w: zero tile size", ErrCorruptManifest)
	}
	if m.OriginWidth == 0 || m.OriginHeight == 0 {
		return fmt.Errorf("%w: zero origin dimensions", ErrCorruptManifest)
	}
	if len(m.ZoomLevels) == 0 {
		return fmt.Errorf("%w: no zoom levels", ErrCorruptManifest)
	}
	for i, l := range m.ZoomLevels {
		if l.Zoom != uint32(i) {
			return fmt.Errorf("%w: zoom %d at position %d", ErrCorruptManifest, l.Zoom, i)
		}
		if l.GridWidth == 0 || l.GridHeight == 0 {
			return fmt.Errorf("%w: zoom %d has empty grid", ErrCorruptManifest, l.Zoom)
		}
	}
	if m.ZoomLevels[0].ScaleFactor != 1.0 {
		return fmt.Errorf("%w: zoom 0 scale %v", ErrCorruptManifest, m.ZoomLevels[0].ScaleFactor)
	}
	return nil
}

// marshal renders the manifest deterministically.
func (m *Manifest) marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ReadManifest loads and validates a finalized manifest.
func ReadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrManifestNotFound, path)
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCorruptManifest, path, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

package viewport

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/questline/maptiles/pyramid"
)

// manifest600 mirrors a 600x600 native image tiled at 256px.
func manifest600() *pyramid.Manifest {
	return &pyramid.Manifest{
		AssetID:  "map-600",
		TileSize: 256,
		ZoomLevels: []pyramid.Level{
			{Zoom: 0, GridWidth: 3, GridHeight: 3, ScaleFactor: 1.0},
			{Zoom: 1, GridWidth: 2, GridHeight: 2, ScaleFactor: 0.5},
			{Zoom: 2, GridWidth: 1, GridHeight: 1, ScaleFactor: 0.25},
		},
		OriginWidth:  600,
		OriginHeight: 600,
	}
}

func coords(zoom uint32, pairs ...[2]uint32) []pyramid.Coord {
	out := make([]pyramid.Coord, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, pyramid.Coord{Zoom: zoom, Col: p[0], Row: p[1]})
	}
	return out
}

func TestTiles(t *testing.T) {
	t.Parallel()

	m := manifest600()
	tests := []struct {
		name string
		view View
		want []pyramid.Coord
	}{
		{
			name: "center of one tile",
			view: View{CenterX: 128, CenterY: 128, WidthPx: 100, HeightPx: 100, Zoom: 0},
			want: coords(0, [2]uint32{0, 0}),
		},
		{
			name: "view straddling four tiles",
			view: View{CenterX: 256, CenterY: 256, WidthPx: 100, HeightPx: 100, Zoom: 0},
			want: coords(0,
				[2]uint32{0, 0}, [2]uint32{1, 0},
				[2]uint32{0, 1}, [2]uint32{1, 1}),
		},
		{
			name: "zoomed out uses scaled center",
			view: View{CenterX: 590, CenterY: 590, WidthPx: 10, HeightPx: 10, Zoom: 1},
			want: coords(1, [2]uint32{1, 1}),
		},
		{
			name: "coarsest level is one tile",
			view: View{CenterX: 300, CenterY: 300, WidthPx: 800, HeightPx: 800, Zoom: 2},
			want: coords(2, [2]uint32{0, 0}),
		},
		{
			name: "bottom-right corner with padding covers the grid",
			view: View{CenterX: 590, CenterY: 590, WidthPx: 64, HeightPx: 64, Zoom: 0, Padding: 2},
			want: coords(0,
				[2]uint32{0, 0}, [2]uint32{1, 0}, [2]uint32{2, 0},
				[2]uint32{0, 1}, [2]uint32{1, 1}, [2]uint32{2, 1},
				[2]uint32{0, 2}, [2]uint32{1, 2}, [2]uint32{2, 2}),
		},
		{
			name: "center far outside clamps to corner tile",
			view: View{CenterX: 10000, CenterY: 10000, WidthPx: 50, HeightPx: 50, Zoom: 0},
			want: coords(0, [2]uint32{2, 2}),
		},
		{
			name: "negative center clamps to origin tile",
			view: View{CenterX: -500, CenterY: -500, WidthPx: 50, HeightPx: 50, Zoom: 0},
			want: coords(0, [2]uint32{0, 0}),
		},
		{
			name: "zero extent on a tile boundary",
			view: View{CenterX: 256, CenterY: 256, Zoom: 0},
			want: coords(0, [2]uint32{1, 1}),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Tiles(m, tc.view)
			if err != nil {
				t.Fatalf("Tiles: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("tile set mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTilesUnknownZoom(t *testing.T) {
	t.Parallel()

	_, err := Tiles(manifest600(), View{CenterX: 100, CenterY: 100, WidthPx: 10, HeightPx: 10, Zoom: 3})
	if !errors.Is(err, ErrUnknownZoom) {
		t.Fatalf("expected ErrUnknownZoom, got %v", err)
	}
}

func TestTilesAlwaysWithinGrid(t *testing.T) {
	t.Parallel()

	m := manifest600()
	for _, v := range []View{
		{CenterX: -1e6, CenterY: 1e6, WidthPx: 4096, HeightPx: 4096, Zoom: 0, Padding: 10},
		{CenterX: 599.9, CenterY: 0.1, WidthPx: 1, HeightPx: 1, Zoom: 1, Padding: 3},
		{CenterX: 300, CenterY: 300, WidthPx: 100000, HeightPx: 100000, Zoom: 2},
	} {
		got, err := Tiles(m, v)
		if err != nil {
			t.Fatalf("Tiles(%+v): %v", v, err)
		}
		if len(got) == 0 {
			t.Fatalf("Tiles(%+v): empty result", v)
		}
		level, _ := m.Level(v.Zoom)
		for _, c := range got {
			if c.Col >= level.GridWidth || c.Row >= level.GridHeight {
				t.Fatalf("Tiles(%+v): %+v outside %dx%d grid", v, c, level.GridWidth, level.GridHeight)
			}
		}
	}
}

func TestPaddingIsMonotonic(t *testing.T) {
	t.Parallel()

	m := manifest600()
	base := View{CenterX: 320, CenterY: 320, WidthPx: 64, HeightPx: 64, Zoom: 0}

	var prev map[pyramid.Coord]bool
	for pad := uint32(0); pad <= 3; pad++ {
		v := base
		v.Padding = pad
		got, err := Tiles(m, v)
		if err != nil {
			t.Fatalf("Tiles pad %d: %v", pad, err)
		}
		set := make(map[pyramid.Coord]bool, len(got))
		for _, c := range got {
			set[c] = true
		}
		for c := range prev {
			if !set[c] {
				t.Fatalf("pad %d lost tile %+v present at pad %d", pad, c, pad-1)
			}
		}
		prev = set
	}
}

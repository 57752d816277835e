package pyramid

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func buildInto(t *testing.T, outDir string, src *image.RGBA, assetID string, opts Options) (*Manifest, error) {
	t.Helper()

	if opts.Codec == nil {
		opts.Codec = PNG{}
	}
	sink, err := NewDirSink(outDir, assetID, opts.Codec.Ext())
	if err != nil {
		t.Fatalf("NewDirSink: %v", err)
	}
	return Build(context.Background(), src, assetID, sink, opts)
}

func TestBuild600x600(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	m, err := buildInto(t, out, gradient(600, 600), "map-600", Options{TileSize: 256})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := &Manifest{
		AssetID:  "map-600",
		TileSize: 256,
		ZoomLevels: []Level{
			{Zoom: 0, GridWidth: 3, GridHeight: 3, ScaleFactor: 1.0},
			{Zoom: 1, GridWidth: 2, GridHeight: 2, ScaleFactor: 0.5},
			{Zoom: 2, GridWidth: 1, GridHeight: 1, ScaleFactor: 0.25},
		},
		OriginWidth:  600,
		OriginHeight: 600,
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}

	// Every tile the manifest implies must exist in the final layout.
	for _, l := range m.ZoomLevels {
		for col := uint32(0); col < l.GridWidth; col++ {
			for row := uint32(0); row < l.GridHeight; row++ {
				path := filepath.Join(out, "map-600", tileRelPath(Coord{Zoom: l.Zoom, Col: col, Row: row}, "png"))
				if _, err := os.Stat(path); err != nil {
					t.Fatalf("missing tile: %v", err)
				}
			}
		}
	}

	got, err := ReadManifest(ManifestPath(out, "map-600"))
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Fatalf("reloaded manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestGridSizeInvariant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		w, h, tile uint32
		gw, gh     uint32
	}{
		{256, 256, 256, 1, 1},
		{257, 256, 256, 2, 1},
		{600, 600, 256, 3, 3},
		{1, 1, 256, 1, 1},
		{512, 100, 128, 4, 1},
		{100, 512, 128, 1, 4},
	}

	for _, tc := range tests {
		out := t.TempDir()
		m, err := buildInto(t, out, gradient(int(tc.w), int(tc.h)), "grid", Options{TileSize: tc.tile})
		if err != nil {
			t.Fatalf("Build %dx%d: %v", tc.w, tc.h, err)
		}
		z0 := m.ZoomLevels[0]
		if z0.GridWidth != tc.gw || z0.GridHeight != tc.gh {
			t.Fatalf("%dx%d tile %d: grid %dx%d, want %dx%d",
				tc.w, tc.h, tc.tile, z0.GridWidth, z0.GridHeight, tc.gw, tc.gh)
		}
	}
}

func TestBuildSingleTileAndOnePixel(t *testing.T) {
	t.Parallel()

	for _, dim := range []int{1, 10, 256} {
		out := t.TempDir()
		m, err := buildInto(t, out, gradient(dim, dim), "tiny", Options{TileSize: 256})
		if err != nil {
			t.Fatalf("Build %d: %v", dim, err)
		}
		if len(m.ZoomLevels) != 1 {
			t.Fatalf("dim %d: %d zoom levels, want 1", dim, len(m.ZoomLevels))
		}
	}
}

func TestEdgeTilePadding(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 300, 300))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 200
		src.Pix[i+3] = 255
	}

	out := t.TempDir()
	if _, err := buildInto(t, out, src, "pad", Options{TileSize: 256}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	f, err := os.Open(filepath.Join(out, "pad", "0", "1", "1.png"))
	if err != nil {
		t.Fatalf("open edge tile: %v", err)
	}
	defer func() { _ = f.Close() }()

	tile, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode edge tile: %v", err)
	}
	if tile.Bounds().Dx() != 256 || tile.Bounds().Dy() != 256 {
		t.Fatalf("edge tile is %v, want 256x256", tile.Bounds())
	}

	// 300-256=44 pixels of content, then transparent padding.
	if _, _, _, a := tile.At(43, 43).RGBA(); a == 0 {
		t.Fatalf("content pixel is transparent")
	}
	if r, g, b, a := tile.At(44, 44).RGBA(); r|g|b|a != 0 {
		t.Fatalf("padding pixel not transparent black: %d %d %d %d", r, g, b, a)
	}
}

func TestBuildIdempotent(t *testing.T) {
	t.Parallel()

	src := gradient(300, 200)
	outA := t.TempDir()
	outB := t.TempDir()
	if _, err := buildInto(t, outA, src, "same", Options{TileSize: 128}); err != nil {
		t.Fatalf("Build A: %v", err)
	}
	if _, err := buildInto(t, outB, src, "same", Options{TileSize: 128}); err != nil {
		t.Fatalf("Build B: %v", err)
	}

	err := filepath.WalkDir(filepath.Join(outA, "same"), func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(outA, path)
		if err != nil {
			return err
		}
		a, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(filepath.Join(outB, rel))
		if err != nil {
			return err
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("%s differs between runs", rel)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
}

type failCodec struct{}

func (failCodec) Ext() string { return "png" }

func (failCodec) Encode(w io.Writer, tile *image.RGBA) error {
	return errors.New("encoder rejected tile")
}

func TestFailedBuildLeavesNoManifest(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	_, err := buildInto(t, out, gradient(300, 300), "doomed", Options{TileSize: 128, Codec: failCodec{}})
	if err == nil {
		t.Fatalf("expected build failure")
	}

	if _, err := ReadManifest(ManifestPath(out, "doomed")); !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging residue left behind: %v", entries)
	}
}

func TestRebuildFailureKeepsPreviousPyramid(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	src := gradient(300, 300)
	first, err := buildInto(t, out, src, "stable", Options{TileSize: 128})
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}

	if _, err := buildInto(t, out, src, "stable", Options{TileSize: 128, Codec: failCodec{}}); err == nil {
		t.Fatalf("expected rebuild failure")
	}

	got, err := ReadManifest(ManifestPath(out, "stable"))
	if err != nil {
		t.Fatalf("previous manifest gone: %v", err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Fatalf("previous manifest changed (-want +got):\n%s", diff)
	}
}

func TestCancelledBuildKeepsPreviousPyramid(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	src := gradient(300, 300)
	if _, err := buildInto(t, out, src, "live", Options{TileSize: 128}); err != nil {
		t.Fatalf("first Build: %v", err)
	}

	sink, err := NewDirSink(out, "live", "png")
	if err != nil {
		t.Fatalf("NewDirSink: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, src, "live", sink, Options{TileSize: 128, Codec: PNG{}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if _, err := ReadManifest(ManifestPath(out, "live")); err != nil {
		t.Fatalf("previous manifest gone: %v", err)
	}
}

func TestMaxPixelsGuard(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	_, err := buildInto(t, out, gradient(64, 64), "big", Options{TileSize: 32, MaxPixels: 1000})
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}

func TestRebuildReplacesPyramidWholesale(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	// First build: 3 levels with 128px tiles. Second: 64px tiles, more
	// levels; no stale files from the first set may survive.
	if _, err := buildInto(t, out, gradient(300, 300), "swap", Options{TileSize: 128}); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	m, err := buildInto(t, out, gradient(300, 300), "swap", Options{TileSize: 64})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if m.TileSize != 64 {
		t.Fatalf("manifest tile size %d, want 64", m.TileSize)
	}

	got, err := ReadManifest(ManifestPath(out, "swap"))
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if got.TileSize != 64 {
		t.Fatalf("published tile size %d, want 64", got.TileSize)
	}
	// zoom 0 of the old set had 3 columns at most; the new one has 5.
	if _, err := os.Stat(filepath.Join(out, "swap", "0", "4")); err != nil {
		t.Fatalf("new layout missing: %v", err)
	}
}

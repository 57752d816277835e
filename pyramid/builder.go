package pyramid

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/questline/maptiles/internal/imaging"
)

// Options configures one pyramid build.
type Options struct {
	// TileSize is the fixed tile edge length in pixels.
	TileSize uint32
	// Codec encodes individual tiles.
	Codec Codec
	// Workers bounds the tile-encode pool; 0 means GOMAXPROCS.
	Workers int
	// MaxPixels caps the source image area; 0 means no cap. Exceeding
	// it fails with ErrImageTooLarge before any allocation.
	MaxPixels uint64
	// Logger is optional; nil discards.
	Logger *slog.Logger
}

// Build slices src into a tile pyramid and publishes it through sink.
//
// Levels are produced in strict coarsening order and the previous
// level's buffer is released as soon as its halving exists, so at most
// two level buffers are resident. Tiles of one level encode in
// parallel on a bounded pool. On success the sink has been finalized;
// on any error or cancellation the sink is aborted and any previously
// finalized pyramid is untouched.
func Build(ctx context.Context, src *image.RGBA, assetID string, sink Sink, opts Options) (*Manifest, error) {
	if src == nil {
		return nil, ErrNilImage
	}
	if opts.TileSize == 0 {
		return nil, ErrBadTileSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	width := src.Rect.Dx()
	height := src.Rect.Dy()
	if opts.MaxPixels > 0 && uint64(width)*uint64(height) > opts.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, width, height, opts.MaxPixels)
	}

	m := &Manifest{
		AssetID:      assetID,
		TileSize:     opts.TileSize,
		OriginWidth:  uint32(width),
		OriginHeight: uint32(height),
	}

	abort := func(err error) (*Manifest, error) {
		if aerr := sink.Abort(); aerr != nil {
			logger.Warn("sink abort failed", "asset", assetID, "error", aerr)
		}
		return nil, err
	}

	cur := src
	scale := 1.0
	for zoom := uint32(0); ; zoom++ {
		if err := ctx.Err(); err != nil {
			return abort(err)
		}

		level := Level{
			Zoom:        zoom,
			GridWidth:   ceilDiv(uint32(cur.Rect.Dx()), opts.TileSize),
			GridHeight:  ceilDiv(uint32(cur.Rect.Dy()), opts.TileSize),
			ScaleFactor: scale,
		}

		if err := emitLevel(ctx, cur, level, int(opts.TileSize), sink, opts.Codec, workers); err != nil {
			logger.Error("tile encode failed", "asset", assetID, "zoom", zoom, "error", err)
			return abort(err)
		}
		m.ZoomLevels = append(m.ZoomLevels, level)
		logger.Debug("level emitted", "asset", assetID, "zoom", zoom,
			"grid_w", level.GridWidth, "grid_h", level.GridHeight)

		if level.GridWidth == 1 && level.GridHeight == 1 {
			break
		}
		cur = imaging.Halve(cur)
		scale /= 2
	}

	if err := sink.Finalize(m); err != nil {
		return abort(fmt.Errorf("finalize pyramid: %w", err))
	}
	return m, nil
}

// emitLevel encodes and writes every tile of one zoom level.
func emitLevel(ctx context.Context, img *image.RGBA, level Level, tileSize int, sink Sink, codec Codec, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for row := uint32(0); row < level.GridHeight; row++ {
		for col := uint32(0); col < level.GridWidth; col++ {
			if gctx.Err() != nil {
				break
			}
			c := Coord{Zoom: level.Zoom, Col: col, Row: row}
			g.Go(func() error {
				tile := cutTile(img, int(c.Col)*tileSize, int(c.Row)*tileSize, tileSize)
				var buf bytes.Buffer
				if err := codec.Encode(&buf, tile); err != nil {
					return fmt.Errorf("encode tile %d/%d/%d: %w", c.Zoom, c.Col, c.Row, err)
				}
				return sink.WriteTile(c, buf.Bytes())
			})
		}
	}
	return g.Wait()
}

// cutTile copies the tileSize square at (x0, y0) out of img, zero
// padding the right and bottom margins of edge tiles.
func cutTile(img *image.RGBA, x0, y0, tileSize int) *image.RGBA {
	tile := image.NewRGBA(image.Rect(0, 0, tileSize, tileSize))
	srcRect := image.Rect(x0, y0, x0+tileSize, y0+tileSize).Intersect(img.Rect)
	if srcRect.Empty() {
		return tile
	}
	dstRect := srcRect.Sub(image.Pt(x0, y0))
	draw.Draw(tile, dstRect, img, srcRect.Min, draw.Src)
	return tile
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

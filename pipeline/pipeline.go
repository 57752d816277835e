// Package pipeline runs the full extraction path for batches of
// assets: resolve from the archive, decode the texture container,
// build and publish the tile pyramid. Assets are independent; one
// asset failing never stops the batch.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/questline/maptiles/archive"
	"github.com/questline/maptiles/pyramid"
	"github.com/questline/maptiles/texture"
)

// Stage names the step an asset failed in.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageDecode  Stage = "decode"
	StageBuild   Stage = "build"
)

// Result is the outcome for one asset key. Err is nil on success, and
// Stage names the failed step otherwise. Manifest is set only on
// success.
type Result struct {
	Key      archive.AssetKey
	Stage    Stage
	Err      error
	Manifest *pyramid.Manifest
}

// Options configures one batch run.
type Options struct {
	// Archive resolves asset bytes. Required.
	Archive *archive.Archive
	// OutputDir receives one pyramid directory per asset key.
	OutputDir string
	// TileSize is the tile edge length in pixels.
	TileSize uint32
	// Codec encodes tiles; nil means PNG.
	Codec pyramid.Codec
	// Concurrency bounds how many assets are in flight; 0 means
	// GOMAXPROCS. Tile encoding within one asset is sequential so that
	// total parallelism stays bounded by this value.
	Concurrency int
	// MaxPixels caps decoded image area per asset; 0 means unlimited.
	MaxPixels uint64
	// OnResult, when set, observes each result as it completes. Called
	// from worker goroutines; must be safe for concurrent use.
	OnResult func(Result)
	// Logger is optional; nil discards.
	Logger *slog.Logger
}

// Run extracts every key and returns one Result per key, in input
// order. Cancellation stops scheduling new assets and aborts in-flight
// pyramid builds; already-finalized pyramids are untouched. Run itself
// only errors on invalid options — per-asset failures live in the
// results.
func Run(ctx context.Context, opts Options, keys []archive.AssetKey) ([]Result, error) {
	if opts.Archive == nil {
		return nil, fmt.Errorf("pipeline: nil archive")
	}
	if opts.TileSize == 0 {
		return nil, pyramid.ErrBadTileSize
	}
	codec := opts.Codec
	if codec == nil {
		codec = pyramid.PNG{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := opts.Concurrency
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(keys))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, key := range keys {
		i, key := i, key
		if ctx.Err() != nil {
			// Keys never scheduled still get a result.
			for j := i; j < len(keys); j++ {
				results[j] = Result{Key: keys[j], Stage: StageResolve, Err: ctx.Err()}
			}
			break
		}
		g.Go(func() error {
			res := extractOne(ctx, opts, codec, logger, key)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			if opts.OnResult != nil {
				opts.OnResult(res)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func extractOne(ctx context.Context, opts Options, codec pyramid.Codec, logger *slog.Logger, key archive.AssetKey) Result {
	blob, err := opts.Archive.ResolveBytes(key)
	if err != nil {
		logger.Warn("resolve failed", "key", key.String(), "error", err)
		return Result{Key: key, Stage: StageResolve, Err: err}
	}

	img, err := texture.Decode(blob)
	if err != nil {
		logger.Warn("decode failed", "key", key.String(), "error", err)
		return Result{Key: key, Stage: StageDecode, Err: err}
	}

	sink, err := pyramid.NewDirSink(opts.OutputDir, key.String(), codec.Ext())
	if err != nil {
		return Result{Key: key, Stage: StageBuild, Err: err}
	}
	m, err := pyramid.Build(ctx, img.RGBA(), key.String(), sink, pyramid.Options{
		TileSize:  opts.TileSize,
		Codec:     codec,
		Workers:   1,
		MaxPixels: opts.MaxPixels,
		Logger:    logger,
	})
	if err != nil {
		logger.Warn("build failed", "key", key.String(), "error", err)
		return Result{Key: key, Stage: StageBuild, Err: err}
	}

	logger.Info("asset extracted", "key", key.String(),
		"levels", len(m.ZoomLevels), "width", m.OriginWidth, "height", m.OriginHeight)
	return Result{Key: key, Manifest: m}
}

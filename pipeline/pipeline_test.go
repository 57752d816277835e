package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/maptiles/archive"
	"github.com/questline/maptiles/pyramid"
	"github.com/questline/maptiles/texture"
)

func textureBlob(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 60, A: 255})
		}
	}
	blob, err := texture.Encode(img, texture.EncodeOptions{
		Generation: texture.Gen2,
		Family:     texture.FamilyBlock,
		Variant:    texture.VariantOpaque,
		Compress:   true,
		MaxMips:    1,
	})
	require.NoError(t, err)
	return blob
}

// testArchive packs: asset 1 (valid, single part), asset 2 (undecodable
// bytes), asset 3 (valid, split across two parts).
func testArchive(t *testing.T) *archive.Archive {
	t.Helper()

	root := t.TempDir()
	b, err := archive.NewBuilder(root)
	require.NoError(t, err)

	require.NoError(t, b.Put(1, archive.TierHigh, 0, textureBlob(t, 64, 48), true))
	require.NoError(t, b.Put(2, archive.TierHigh, 0, bytes.Repeat([]byte("not a texture container "), 4), false))

	split := textureBlob(t, 32, 32)
	require.NoError(t, b.Put(3, archive.TierHigh, 0, split[:20], false))
	require.NoError(t, b.Put(3, archive.TierHigh, 1, split[20:], true))

	require.NoError(t, b.Finalize())

	a, err := archive.Open(root)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestRunBatch(t *testing.T) {
	t.Parallel()

	a := testArchive(t)
	out := t.TempDir()

	keys := []archive.AssetKey{
		{ID: 1, Tier: archive.TierHigh},
		{ID: 2, Tier: archive.TierHigh},
		{ID: 3, Tier: archive.TierHigh},
		{ID: 99, Tier: archive.TierHigh},
		{ID: 1, Tier: archive.TierLow},
	}

	var observed atomic.Int32
	results, err := Run(context.Background(), Options{
		Archive:     a,
		OutputDir:   out,
		TileSize:    32,
		Concurrency: 2,
		OnResult:    func(Result) { observed.Add(1) },
	}, keys)
	require.NoError(t, err)
	require.Len(t, results, len(keys))
	assert.Equal(t, int32(len(keys)), observed.Load())

	// Results are in input order regardless of completion order.
	for i, res := range results {
		assert.Equal(t, keys[i], res.Key, "result %d", i)
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, uint32(64), results[0].Manifest.OriginWidth)
	assert.Equal(t, uint32(48), results[0].Manifest.OriginHeight)

	assert.Equal(t, StageDecode, results[1].Stage)
	assert.ErrorIs(t, results[1].Err, texture.ErrBadMagic)

	// Multi-part blob reassembles in part order and decodes.
	require.NoError(t, results[2].Err)
	assert.Equal(t, uint32(32), results[2].Manifest.OriginWidth)

	assert.Equal(t, StageResolve, results[3].Stage)
	assert.ErrorIs(t, results[3].Err, archive.ErrAssetNotFound)
	assert.Equal(t, StageResolve, results[4].Stage)
	assert.ErrorIs(t, results[4].Err, archive.ErrAssetNotFound)

	// Successful assets have published manifests; failed ones have none.
	for _, res := range results {
		m, err := pyramid.ReadManifest(pyramid.ManifestPath(out, res.Key.String()))
		if res.Err == nil {
			require.NoError(t, err)
			assert.Equal(t, res.Manifest, m)
		} else {
			assert.ErrorIs(t, err, pyramid.ErrManifestNotFound)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	a := testArchive(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, Options{
		Archive:   a,
		OutputDir: t.TempDir(),
		TileSize:  32,
	}, []archive.AssetKey{{ID: 1, Tier: archive.TierHigh}, {ID: 3, Tier: archive.TierHigh}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
}

func TestRunOptionValidation(t *testing.T) {
	t.Parallel()

	a := testArchive(t)

	_, err := Run(context.Background(), Options{OutputDir: t.TempDir(), TileSize: 32}, nil)
	assert.Error(t, err)

	_, err = Run(context.Background(), Options{Archive: a, OutputDir: t.TempDir()}, nil)
	assert.ErrorIs(t, err, pyramid.ErrBadTileSize)
}

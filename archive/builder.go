package archive

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// Builder packs blobs into an archive root. Data files are written as
// they are added; the index is written last, to a temp file renamed
// into place, so a reader never observes a partially built index.
type Builder struct {
	root    string
	entries []indexEntry
	enc     *zstd.Encoder
	logger  *slog.Logger
}

// BuilderOption configures NewBuilder.
type BuilderOption func(*Builder)

// WithBuilderLogger sets an optional logger for progress output.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder creates the root substructure if needed and returns a
// builder for one index file.
func NewBuilder(root string, opts ...BuilderOption) (*Builder, error) {
	for _, dir := range []string{filepath.Join(root, indexDir), filepath.Join(root, dataDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		root:   root,
		enc:    enc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Put stores one part of an asset. Compression is attempted when
// requested and kept only if it shrinks the blob. The tier may be
// TierAny to serve every requested tier from one stored variant.
func (b *Builder) Put(id uint32, tier Tier, part uint16, data []byte, compress bool) error {
	if tier != TierAny {
		if err := (AssetKey{ID: id, Tier: tier}).validate(); err != nil {
			return err
		}
	}
	for _, e := range b.entries {
		if e.AssetID == id && e.Tier == tier && e.Part == part {
			return fmt.Errorf("%w: asset %d tier %s part %d", ErrDuplicateEntry, id, tier, part)
		}
	}

	stored := data
	encoding := encodingRaw
	if compress {
		if c := b.enc.EncodeAll(data, nil); len(c) < len(data) {
			stored = c
			encoding = encodingZstd
		}
	}

	digest := blake3.Sum256(stored)
	if err := b.writeBlob(digest, stored); err != nil {
		return err
	}

	b.entries = append(b.entries, indexEntry{
		AssetID:    id,
		Tier:       tier,
		Encoding:   encoding,
		Part:       part,
		RawSize:    uint32(len(data)),
		StoredSize: uint32(len(stored)),
		Digest:     digest,
	})
	b.logger.Debug("blob staged", "asset", id, "tier", tier, "part", part, "stored_bytes", len(stored))
	return nil
}

// writeBlob stores content-addressed bytes; an existing file with the
// same digest already holds identical content and is left alone.
func (b *Builder) writeBlob(digest [32]byte, stored []byte) error {
	path := blobPath(b.root, digest)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".blob-*")
	if err != nil {
		return fmt.Errorf("create blob temp: %w", err)
	}
	if _, err := tmp.Write(stored); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("finalize blob: %w", err)
	}
	return nil
}

// Finalize writes the index file atomically and closes the builder.
func (b *Builder) Finalize() error {
	defer b.enc.Close()

	dir := filepath.Join(b.root, indexDir)
	tmp, err := os.CreateTemp(dir, ".index-*")
	if err != nil {
		return fmt.Errorf("create index temp: %w", err)
	}
	if _, err := tmp.Write(marshalIndex(b.entries)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close index: %w", err)
	}

	final := filepath.Join(dir, nextIndexName(dir))
	if err := os.Rename(tmp.Name(), final); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("finalize index: %w", err)
	}

	b.logger.Info("index finalized", "path", final, "entries", len(b.entries))
	b.entries = nil
	return nil
}

// nextIndexName picks the first unused pack-NNN.idx slot.
func nextIndexName(dir string) string {
	for i := 0; ; i++ {
		name := fmt.Sprintf("pack-%03d.idx", i)
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			return name
		}
	}
}

package archive

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

const (
	indexDir = "index"
	dataDir  = "data"
)

// Blob is one stored part of an asset, decoded to its raw bytes.
type Blob struct {
	// Data is owned by the caller once returned.
	Data []byte
	// Size is the declared raw length; always equals len(Data) for a
	// blob that passed verification.
	Size uint32
}

// Archive is an opened archive root. Safe for concurrent Resolve calls.
type Archive struct {
	root    string
	entries map[uint64][]indexEntry
	dec     *zstd.Decoder
	logger  *slog.Logger
}

// Option configures Open.
type Option func(*Archive)

// WithLogger sets an optional logger. Nil (the default) discards.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) { a.logger = logger }
}

// Open validates the root, parses every index file once and returns a
// handle with amortized per-key lookup.
func Open(root string, opts ...Option) (*Archive, error) {
	if !IsValidRoot(root) {
		return nil, fmt.Errorf("%w: %q", ErrNotArchive, root)
	}

	a := &Archive{
		root:    root,
		entries: make(map[uint64][]indexEntry),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}

	paths, err := indexFiles(root)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, path := range paths {
		entries, err := readIndexFile(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			key := mapKey(e.AssetID, e.Tier)
			for _, prev := range a.entries[key] {
				if prev.Part == e.Part {
					return nil, fmt.Errorf("%w: asset %d tier %s part %d", ErrDuplicateEntry, e.AssetID, e.Tier, e.Part)
				}
			}
			a.entries[key] = append(a.entries[key], e)
		}
		total += len(entries)
	}
	for _, parts := range a.entries {
		sort.Slice(parts, func(i, j int) bool { return parts[i].Part < parts[j].Part })
	}

	// A single shared decoder: DecodeAll is safe for concurrent use.
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	a.dec = dec

	a.logger.Info("archive opened", "root", root, "index_files", len(paths), "entries", total)
	return a, nil
}

// Close releases the handle's resources.
func (a *Archive) Close() {
	if a.dec != nil {
		a.dec.Close()
		a.dec = nil
	}
}

// Root returns the opened root path.
func (a *Archive) Root() string { return a.root }

// AssetIDs returns every distinct asset ID in the index, ascending.
func (a *Archive) AssetIDs() []uint32 {
	seen := make(map[uint32]struct{})
	for key := range a.entries {
		seen[uint32(key>>8)] = struct{}{}
	}
	ids := make([]uint32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Resolve returns the stored blobs for a key, parts in ascending order.
// A tier-specific entry set wins; otherwise a TierAny set serves the
// request. Every blob is length- and digest-verified before return.
func (a *Archive) Resolve(key AssetKey) ([]Blob, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}

	parts, ok := a.entries[mapKey(key.ID, key.Tier)]
	if !ok {
		parts, ok = a.entries[mapKey(key.ID, TierAny)]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, key)
	}

	blobs := make([]Blob, 0, len(parts))
	for _, e := range parts {
		data, err := a.readBlob(&e)
		if err != nil {
			return nil, fmt.Errorf("%s part %d: %w", key, e.Part, err)
		}
		blobs = append(blobs, Blob{Data: data, Size: e.RawSize})
	}
	return blobs, nil
}

func (a *Archive) readBlob(e *indexEntry) ([]byte, error) {
	path := blobPath(a.root, e.Digest)
	stored, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	if len(stored) != int(e.StoredSize) {
		return nil, fmt.Errorf("%w: %q: stored %d bytes, index declares %d", ErrCorruptBlob, path, len(stored), e.StoredSize)
	}
	if sum := blake3.Sum256(stored); sum != e.Digest {
		return nil, fmt.Errorf("%w: %q: digest mismatch", ErrCorruptBlob, path)
	}

	if e.Encoding == encodingRaw {
		if len(stored) != int(e.RawSize) {
			return nil, fmt.Errorf("%w: %q: raw %d bytes, index declares %d", ErrCorruptBlob, path, len(stored), e.RawSize)
		}
		return stored, nil
	}

	data, err := a.dec.DecodeAll(stored, make([]byte, 0, e.RawSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: zstd: %v", ErrCorruptBlob, path, err)
	}
	if len(data) != int(e.RawSize) {
		return nil, fmt.Errorf("%w: %q: decoded %d bytes, index declares %d", ErrCorruptBlob, path, len(data), e.RawSize)
	}
	return data, nil
}

// ResolveBytes resolves a key and concatenates its parts in order; the
// usual shape for feeding a multi-part texture to the decoder.
func (a *Archive) ResolveBytes(key AssetKey) ([]byte, error) {
	blobs, err := a.Resolve(key)
	if err != nil {
		return nil, err
	}
	if len(blobs) == 1 {
		return blobs[0].Data, nil
	}
	total := 0
	for _, b := range blobs {
		total += len(b.Data)
	}
	out := make([]byte, 0, total)
	for _, b := range blobs {
		out = append(out, b.Data...)
	}
	return out, nil
}

// IsValidRoot reports whether path has the expected archive
// substructure: index/ with at least one .idx file and a data/
// directory. It never fails for a merely-absent directory.
func IsValidRoot(path string) bool {
	info, err := os.Stat(filepath.Join(path, dataDir))
	if err != nil || !info.IsDir() {
		return false
	}
	paths, err := indexFiles(path)
	return err == nil && len(paths) > 0
}

// DetectRoot probes the conventional archive locations: the
// MAPTILES_ARCHIVE environment variable, then well-known directories
// under the working directory.
func DetectRoot() (string, bool) {
	if env := os.Getenv("MAPTILES_ARCHIVE"); env != "" && IsValidRoot(env) {
		return env, true
	}
	for _, candidate := range []string{"archive", "Data", filepath.Join("assets", "archive")} {
		if IsValidRoot(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func indexFiles(root string) ([]string, error) {
	dir := filepath.Join(root, indexDir)
	listing, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrNotArchive, root, err)
	}
	var paths []string
	for _, entry := range listing {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".idx") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// blobPath derives the content-addressed location of a stored blob.
func blobPath(root string, digest [32]byte) string {
	name := hex.EncodeToString(digest[:])
	return filepath.Join(root, dataDir, name[:2], name)
}

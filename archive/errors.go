package archive

import "errors"

var (
	// ErrNotArchive indicates the path is not a valid archive root.
	ErrNotArchive = errors.New("not an archive root")
	// ErrAssetNotFound indicates no index entry matches the asset key.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrCorruptIndex indicates a structurally invalid index file.
	ErrCorruptIndex = errors.New("corrupt index")
	// ErrCorruptBlob indicates a data blob that fails its size or digest check.
	ErrCorruptBlob = errors.New("corrupt blob")
	// ErrInvalidKey indicates a malformed asset key.
	ErrInvalidKey = errors.New("invalid asset key")
	// ErrDuplicateEntry indicates the same (asset, tier, part) indexed twice.
	ErrDuplicateEntry = errors.New("duplicate index entry")
)

package pyramid

import "errors"

var (
	// ErrNilImage indicates Build was called without a source image.
	ErrNilImage = errors.New("nil source image")
	// ErrBadTileSize indicates a zero tile size.
	ErrBadTileSize = errors.New("invalid tile size")
	// ErrImageTooLarge indicates the source exceeds the pixel budget;
	// retry with a lower quality tier or a larger budget.
	ErrImageTooLarge = errors.New("image exceeds pixel budget")
	// ErrUnknownCodec indicates an unrecognized tile codec name.
	ErrUnknownCodec = errors.New("unknown tile codec")
	// ErrManifestNotFound indicates no finalized manifest at the path.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrCorruptManifest indicates a manifest that fails validation.
	ErrCorruptManifest = errors.New("corrupt manifest")
)

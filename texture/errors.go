package texture

import "errors"

var (
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrBadMagic indicates the blob does not start with the MTEX magic.
	ErrBadMagic = errors.New("not an MTEX container")
	// ErrUnsupportedGeneration indicates a header generation outside the known range.
	ErrUnsupportedGeneration = errors.New("unsupported container generation")
	// ErrUnsupportedVariant indicates a recognized but unsupported family or sub-variant.
	ErrUnsupportedVariant = errors.New("unsupported compression variant")
	// ErrBadDimensions indicates zero or inconsistently flagged dimensions.
	ErrBadDimensions = errors.New("invalid texture dimensions")
	// ErrBadMipCount indicates a zero or implausible mip count.
	ErrBadMipCount = errors.New("invalid mip count")
	// ErrTruncatedData indicates declared sizes exceed the remaining blob length.
	ErrTruncatedData = errors.New("truncated texture data")
	// ErrTrailingData indicates bytes remain past the last declared mip body.
	ErrTrailingData = errors.New("trailing bytes after mip data")
	// ErrHeaderRead indicates the header could not be read.
	ErrHeaderRead = errors.New("reading header failed")
	// ErrPayloadSizeMismatch indicates a decoded mip payload has the wrong length.
	ErrPayloadSizeMismatch = errors.New("mip payload size mismatch")
	// ErrMipTableMagic indicates an unknown block magic in the mip table.
	ErrMipTableMagic = errors.New("unknown block magic in mip table")
	// ErrMipTableSize indicates an invalid size in the mip table.
	ErrMipTableSize = errors.New("invalid block size in mip table")
	// ErrCopySizeMismatch indicates COPY body data size mismatch.
	ErrCopySizeMismatch = errors.New("COPY body size mismatch")
	// ErrInputTooLarge indicates input data is too large to encode.
	ErrInputTooLarge = errors.New("input data too large")
	// ErrCompressedTooLarge indicates compressed payload exceeds limits.
	ErrCompressedTooLarge = errors.New("compressed data too large")
	// ErrChunkTooLarge indicates a compressed chunk exceeds allowed size.
	ErrChunkTooLarge = errors.New("compressed chunk too large")
	// ErrLZ4Compress indicates LZ4 compression failed.
	ErrLZ4Compress = errors.New("LZ4 compression failed")
	// ErrLZ4Decode indicates LZ4 decode failed.
	ErrLZ4Decode = errors.New("LZ4 decode failed")
	// ErrChunkStreamTruncated indicates the LZ4 chunk stream is truncated.
	ErrChunkStreamTruncated = errors.New("LZ4 chunk-stream truncated")
	// ErrUnknownChunkFlags indicates unknown LZ4 chunk flags.
	ErrUnknownChunkFlags = errors.New("unknown LZ4 chunk flags")
	// ErrInvalidChunkSize indicates an invalid LZ4 chunk size.
	ErrInvalidChunkSize = errors.New("invalid compressed chunk size")
	// ErrDecodeOverrun indicates decoded data overruns the target buffer.
	ErrDecodeOverrun = errors.New("decoded LZ4 overruns target buffer")
	// ErrDecodedSizeMismatch indicates decoded size mismatch.
	ErrDecodedSizeMismatch = errors.New("LZ4 decoded size mismatch")
	// ErrPhotoDecode indicates the photographic payload could not be decoded.
	ErrPhotoDecode = errors.New("photographic payload decode failed")
	// ErrPhotoEncode indicates the photographic payload could not be encoded.
	ErrPhotoEncode = errors.New("photographic payload encode failed")
	// ErrPhotoDimensions indicates a photographic payload with the wrong dimensions.
	ErrPhotoDimensions = errors.New("photographic payload dimension mismatch")
	// ErrPaletteOverflow indicates an image with more distinct colors than palette slots.
	ErrPaletteOverflow = errors.New("too many colors for palette family")
	// ErrMipSizeMismatch indicates a pre-encoded mip payload has the wrong length.
	ErrMipSizeMismatch = errors.New("mip size mismatch")
)

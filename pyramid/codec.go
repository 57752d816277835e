package pyramid

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
)

// Codec encodes one tile. Implementations must be safe for concurrent
// use; the builder encodes tiles on a worker pool.
type Codec interface {
	Encode(w io.Writer, tile *image.RGBA) error
	// Ext is the file extension, without the dot.
	Ext() string
}

// PNG is the lossless tile codec.
type PNG struct{}

// Encode implements Codec.
func (PNG) Encode(w io.Writer, tile *image.RGBA) error {
	return png.Encode(w, tile)
}

// Ext implements Codec.
func (PNG) Ext() string { return "png" }

// JPEG is the lossy tile codec.
type JPEG struct {
	// Quality in [1,100]; 0 means 85.
	Quality int
}

// Encode implements Codec.
func (c JPEG) Encode(w io.Writer, tile *image.RGBA) error {
	q := c.Quality
	if q == 0 {
		q = 85
	}
	return jpeg.Encode(w, tile, &jpeg.Options{Quality: q})
}

// Ext implements Codec.
func (JPEG) Ext() string { return "jpg" }

// CodecByName maps a configured format name to a codec.
func CodecByName(name string, jpegQuality int) (Codec, error) {
	switch name {
	case "png":
		return PNG{}, nil
	case "jpg", "jpeg":
		return JPEG{Quality: jpegQuality}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

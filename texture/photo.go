package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
)

// The photographic family wraps a standard JPEG stream verbatim; the
// container contributes only the header and mip framing. Any conforming
// JPEG decoder is acceptable, so the stdlib one is used.

func decodePhotoMip(payload []byte, w, h int) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPhotoDecode, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != w || bounds.Dy() != h {
		return nil, fmt.Errorf("%w: header %dx%d, payload %dx%d",
			ErrPhotoDimensions, w, h, bounds.Dx(), bounds.Dy())
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba.Pix, nil
}

func encodePhotoMip(rgba *image.RGBA, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPhotoEncode, err)
	}
	return buf.Bytes(), nil
}

package texture

import (
	"bytes"
	"fmt"
	"io"
)

// Decode parses an MTEX blob and decodes mip level 0 into RGBA8.
//
// It is a pure function of the blob bytes: no I/O, deterministic
// output. The whole mip table is validated against the blob length
// before any pixel work, so a truncated container fails with
// ErrTruncatedData and never yields a partial image.
func Decode(blob []byte) (*Image, error) {
	r := bytes.NewReader(blob)

	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	var pal []byte
	if h.Family == FamilyPalette {
		pal = make([]byte, paletteBytes)
		if _, err := io.ReadFull(r, pal); err != nil {
			return nil, fmt.Errorf("%w: color table: %v", ErrTruncatedData, err)
		}
	}

	table, err := readMipTable(r, h)
	if err != nil {
		return nil, err
	}

	var declared int64
	for _, e := range table {
		declared += int64(e.Size)
	}
	remaining := int64(r.Len())
	if remaining < declared {
		return nil, fmt.Errorf("%w: mip bodies declare %d bytes, %d remain", ErrTruncatedData, declared, remaining)
	}
	if remaining > declared {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, remaining-declared)
	}

	// Mip 0 is stored first (largest first); the validated size table is
	// what lets later readers seek past it to the smaller levels.
	body, err := readMipBody(r, table[0])
	if err != nil {
		return nil, err
	}

	payload, err := decompressMip(body, mipPayloadSize(h, 0))
	if err != nil {
		return nil, fmt.Errorf("mip 0: %w", err)
	}

	w, hh := int(h.Width), int(h.Height)
	var pix []byte
	switch h.Family {
	case FamilyPalette:
		pix, err = decodePaletteMip(pal, payload, w, hh, h.AlphaPlane())
	case FamilyBlock:
		pix, err = decodeBlockMip(payload, w, hh, h.Variant)
	case FamilyPhoto:
		pix, err = decodePhotoMip(payload, w, hh)
	default:
		err = fmt.Errorf("%w: family %d", ErrUnsupportedVariant, uint8(h.Family))
	}
	if err != nil {
		return nil, fmt.Errorf("mip 0: %w", err)
	}

	return &Image{
		Width:    h.Width,
		Height:   h.Height,
		MipCount: h.MipCount,
		NonPow2:  h.NonPow2(),
		Pix:      pix,
	}, nil
}

// DecodeConfig parses and validates the container header without
// touching pixel data.
func DecodeConfig(blob []byte) (*Header, error) {
	return readHeader(bytes.NewReader(blob))
}

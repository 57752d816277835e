package texture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"

	"github.com/questline/maptiles/internal/imaging"
)

// EncodeOptions selects the container shape produced by Encode.
type EncodeOptions struct {
	// Generation of the container (Gen0..Gen2). Families and LZ4 are
	// gated by generation exactly as on the decode side.
	Generation uint8
	// Family selects the pixel-storage family.
	Family Family
	// Variant selects the block sub-variant; block family only.
	Variant Variant
	// AlphaPlane stores palette alpha in a separate plane.
	AlphaPlane bool
	// Compress stores mip bodies as LZ4 chunk streams (Gen2 only);
	// bodies that do not shrink fall back to COPY.
	Compress bool
	// MaxMips limits the mip chain; 0 means the full chain down to 1x1.
	MaxMips int
	// PhotoQuality is the JPEG quality for the photo family; 0 means 90.
	PhotoQuality int
}

// Encode builds an MTEX container from an image.
func Encode(img image.Image, opts EncodeOptions) ([]byte, error) {
	bounds := img.Bounds()
	width, err := u32FromInt(bounds.Dx())
	if err != nil {
		return nil, err
	}
	height, err := u32FromInt(bounds.Dy())
	if err != nil {
		return nil, err
	}

	mipCount := fullMipCount(width, height)
	if opts.MaxMips > 0 && uint32(opts.MaxMips) < mipCount {
		mipCount = uint32(opts.MaxMips)
	}

	flags := uint8(0)
	if !isPow2(width) || !isPow2(height) {
		flags |= FlagNonPow2
	}
	if opts.Family == FamilyPalette && opts.AlphaPlane {
		flags |= FlagAlphaPlane
	}

	h := &Header{
		Generation: opts.Generation,
		Family:     opts.Family,
		Variant:    opts.Variant,
		Flags:      flags,
		Width:      width,
		Height:     height,
		MipCount:   mipCount,
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	base := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(base, base.Bounds(), img, bounds.Min, draw.Src)

	mips := make([]*image.RGBA, mipCount)
	mips[0] = base
	for i := 1; i < int(mipCount); i++ {
		mips[i] = imaging.Halve(mips[i-1])
	}

	quality := opts.PhotoQuality
	if quality == 0 {
		quality = 90
	}

	var pal *paletteBuilder
	if opts.Family == FamilyPalette {
		pal = newPaletteBuilder()
	}

	payloads := make([][]byte, mipCount)
	for i, mip := range mips {
		w := mip.Rect.Dx()
		hh := mip.Rect.Dy()
		switch opts.Family {
		case FamilyPalette:
			payloads[i], err = encodePaletteMip(pal, mip.Pix, w, hh, opts.AlphaPlane)
		case FamilyBlock:
			payloads[i] = encodeBlockMip(mip.Pix, w, hh, opts.Variant)
		case FamilyPhoto:
			payloads[i], err = encodePhotoMip(mip, quality)
		}
		if err != nil {
			return nil, fmt.Errorf("mip %d: %w", i, err)
		}
		if want := mipPayloadSize(h, i); want >= 0 && len(payloads[i]) != want {
			return nil, fmt.Errorf("%w: mip %d: expected %d, got %d", ErrMipSizeMismatch, i, want, len(payloads[i]))
		}
	}

	bodies := make([]*mipBody, mipCount)
	for i, payload := range payloads {
		if opts.Compress && opts.Generation >= Gen2 {
			body, err := compressMip(payload)
			if err != nil {
				return nil, fmt.Errorf("mip %d: %w", i, err)
			}
			bodies[i] = body
		} else {
			size, err := i32FromInt(len(payload))
			if err != nil {
				return nil, err
			}
			bodies[i] = &mipBody{Magic: mipMagicCopy, Size: size, Data: payload}
		}
	}

	var buf bytes.Buffer
	if err := writeHeader(&buf, h); err != nil {
		return nil, err
	}
	if pal != nil {
		buf.Write(pal.bytes())
	}
	for _, body := range bodies {
		buf.WriteString(body.Magic)
		if err := binary.Write(&buf, binary.LittleEndian, body.Size); err != nil {
			return nil, err
		}
	}
	for _, body := range bodies {
		if err := writeMipBody(&buf, body); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

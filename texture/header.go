package texture

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
)

// Magic identifies an MTEX container.
const Magic = "MTEX"

// HeaderSize is the fixed byte length of the container header, magic included.
const HeaderSize = 32

// Container generations. Each generation widens the feature set of the
// previous one; a header byte outside this range is rejected.
const (
	// Gen0 supports the palette family with uncompressed bodies only.
	Gen0 uint8 = 0
	// Gen1 adds the block-compressed family.
	Gen1 uint8 = 1
	// Gen2 adds the photographic family and LZ4 mip bodies.
	Gen2 uint8 = 2
)

// Family selects the pixel-storage family of a container.
type Family uint8

const (
	// FamilyPalette stores a 256-entry color table plus one index byte
	// per pixel and an optional separate alpha plane.
	FamilyPalette Family = 0
	// FamilyBlock stores independently decodable 4x4 blocks.
	FamilyBlock Family = 1
	// FamilyPhoto embeds a standard JPEG stream per mip level.
	FamilyPhoto Family = 2
)

// String implements fmt.Stringer.
func (f Family) String() string {
	switch f {
	case FamilyPalette:
		return "palette"
	case FamilyBlock:
		return "block"
	case FamilyPhoto:
		return "photo"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// Variant selects the alpha handling of the block family.
type Variant uint8

const (
	// VariantNone is used by the non-block families.
	VariantNone Variant = 0
	// VariantOpaque is the 8-byte color-only block (1-bit punch-through alpha).
	VariantOpaque Variant = 1
	// VariantSmoothAlpha is the 16-byte block with an interpolated
	// one-channel endpoint pair for alpha.
	VariantSmoothAlpha Variant = 2
	// VariantSharpAlpha is the 24-byte block with an 8-entry explicit
	// alpha lookup table.
	VariantSharpAlpha Variant = 3
)

// String implements fmt.Stringer.
func (v Variant) String() string {
	switch v {
	case VariantNone:
		return "none"
	case VariantOpaque:
		return "opaque"
	case VariantSmoothAlpha:
		return "smooth-alpha"
	case VariantSharpAlpha:
		return "sharp-alpha"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// Header flag bits.
const (
	// FlagNonPow2 marks textures whose dimensions are not powers of two.
	FlagNonPow2 uint8 = 1 << 0
	// FlagAlphaPlane marks palette textures carrying a separate alpha plane.
	FlagAlphaPlane uint8 = 1 << 1
)

// maxMipCount bounds the mip table; 32 levels cover any 32-bit dimension.
const maxMipCount = 32

// Header is the fixed MTEX container header.
type Header struct {
	Generation uint8
	Family     Family
	Variant    Variant
	Flags      uint8
	Width      uint32
	Height     uint32
	MipCount   uint32
}

// NonPow2 reports whether the non-power-of-two flag is set.
func (h *Header) NonPow2() bool { return h.Flags&FlagNonPow2 != 0 }

// AlphaPlane reports whether the palette alpha-plane flag is set.
func (h *Header) AlphaPlane() bool { return h.Flags&FlagAlphaPlane != 0 }

func isPow2(v uint32) bool { return bits.OnesCount32(v) == 1 }

// validate checks internal consistency and generation gating.
func (h *Header) validate() error {
	if h.Generation > Gen2 {
		return fmt.Errorf("%w: generation %d", ErrUnsupportedGeneration, h.Generation)
	}
	switch h.Family {
	case FamilyPalette, FamilyPhoto:
		if h.Variant != VariantNone {
			return fmt.Errorf("%w: family %s with variant %d", ErrUnsupportedVariant, h.Family, h.Variant)
		}
	case FamilyBlock:
		if h.Variant < VariantOpaque || h.Variant > VariantSharpAlpha {
			return fmt.Errorf("%w: block variant %d", ErrUnsupportedVariant, h.Variant)
		}
	default:
		return fmt.Errorf("%w: family %d", ErrUnsupportedVariant, uint8(h.Family))
	}
	if h.Generation < Gen1 && h.Family == FamilyBlock {
		return fmt.Errorf("%w: block family requires generation 1", ErrUnsupportedVariant)
	}
	if h.Generation < Gen2 && h.Family == FamilyPhoto {
		return fmt.Errorf("%w: photo family requires generation 2", ErrUnsupportedVariant)
	}
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadDimensions, h.Width, h.Height)
	}
	if !h.NonPow2() && (!isPow2(h.Width) || !isPow2(h.Height)) {
		return fmt.Errorf("%w: %dx%d not flagged non-power-of-two", ErrBadDimensions, h.Width, h.Height)
	}
	if h.MipCount == 0 || h.MipCount > maxMipCount {
		return fmt.Errorf("%w: %d", ErrBadMipCount, h.MipCount)
	}
	return nil
}

// readHeader reads and validates a container header.
func readHeader(r io.Reader) (*Header, error) {
	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderRead, err)
	}
	if string(raw[0:4]) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, raw[0:4])
	}

	h := &Header{
		Generation: raw[4],
		Family:     Family(raw[5]),
		Variant:    Variant(raw[6]),
		Flags:      raw[7],
		Width:      binary.LittleEndian.Uint32(raw[8:12]),
		Height:     binary.LittleEndian.Uint32(raw[12:16]),
		MipCount:   binary.LittleEndian.Uint32(raw[16:20]),
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// writeHeader writes a validated container header.
func writeHeader(w io.Writer, h *Header) error {
	if err := h.validate(); err != nil {
		return err
	}

	var raw [HeaderSize]byte
	copy(raw[0:4], Magic)
	raw[4] = h.Generation
	raw[5] = uint8(h.Family)
	raw[6] = uint8(h.Variant)
	raw[7] = h.Flags
	binary.LittleEndian.PutUint32(raw[8:12], h.Width)
	binary.LittleEndian.PutUint32(raw[12:16], h.Height)
	binary.LittleEndian.PutUint32(raw[16:20], h.MipCount)

	_, err := w.Write(raw[:])
	return err
}

// mipDims returns the pixel dimensions of a mip level. Level 0 is the
// full resolution; each deeper level halves with ceiling rounding and
// never drops below 1.
func mipDims(width, height uint32, level int) (int, int) {
	w := int(width)
	h := int(height)
	for i := 0; i < level; i++ {
		w = (w + 1) / 2
		h = (h + 1) / 2
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// fullMipCount returns the number of levels down to 1x1 inclusive.
func fullMipCount(width, height uint32) uint32 {
	count := uint32(1)
	w, h := width, height
	for w > 1 || h > 1 {
		count++
		w = (w + 1) / 2
		h = (h + 1) / 2
	}
	return count
}

// blockBytes returns the encoded byte length of one 4x4 block.
func blockBytes(v Variant) int {
	switch v {
	case VariantOpaque:
		return 8
	case VariantSmoothAlpha:
		return 16
	case VariantSharpAlpha:
		return 24
	default:
		return -1
	}
}

// mipPayloadSize returns the decoded (pre-LZ4) payload length of a mip
// level, or -1 when the family stores variable-length payloads.
func mipPayloadSize(h *Header, level int) int {
	w, hh := mipDims(h.Width, h.Height, level)
	switch h.Family {
	case FamilyPalette:
		size := w * hh
		if h.AlphaPlane() {
			size *= 2
		}
		return size
	case FamilyBlock:
		blocksW := (w + 3) / 4
		blocksH := (hh + 3) / 4
		return blocksW * blocksH * blockBytes(h.Variant)
	case FamilyPhoto:
		return -1
	default:
		return -1
	}
}

package texture

import (
	"encoding/binary"
	"fmt"
)

// The block family stores 4x4 pixel cells, each independently decodable.
// Every variant carries an 8-byte color half: two RGB565 endpoints and
// sixteen 2-bit selectors. The smooth-alpha variant prepends an 8-byte
// interpolated alpha half; the sharp-alpha variant prepends a 16-byte
// half whose first 8 bytes are an explicit alpha lookup table.

func rgb565(v uint16) (uint8, uint8, uint8) {
	r5 := uint32(v>>11) & 0x1f
	g6 := uint32(v>>5) & 0x3f
	b5 := uint32(v) & 0x1f
	return uint8((r5*255 + 15) / 31), uint8((g6*255 + 31) / 63), uint8((b5*255 + 15) / 31)
}

func pack565(r, g, b uint8) uint16 {
	r5 := (uint32(r)*31 + 127) / 255
	g6 := (uint32(g)*63 + 127) / 255
	b5 := (uint32(b)*31 + 127) / 255
	return uint16(r5<<11 | g6<<5 | b5)
}

// decodeColorHalf expands the 8-byte color half into 16 RGBA pixels.
// In four-color mode (forced for the alpha variants) both extra palette
// entries are interpolants; otherwise c0 <= c1 selects three-color mode
// with a transparent fourth entry.
func decodeColorHalf(b []byte, forceFourColor bool) [16][4]uint8 {
	c0v := binary.LittleEndian.Uint16(b[0:2])
	c1v := binary.LittleEndian.Uint16(b[2:4])
	r0, g0, b0 := rgb565(c0v)
	r1, g1, b1 := rgb565(c1v)

	var pal [4][4]uint8
	pal[0] = [4]uint8{r0, g0, b0, 255}
	pal[1] = [4]uint8{r1, g1, b1, 255}
	if forceFourColor || c0v > c1v {
		pal[2] = [4]uint8{
			uint8((2*uint32(r0) + uint32(r1)) / 3),
			uint8((2*uint32(g0) + uint32(g1)) / 3),
			uint8((2*uint32(b0) + uint32(b1)) / 3),
			255,
		}
		pal[3] = [4]uint8{
			uint8((uint32(r0) + 2*uint32(r1)) / 3),
			uint8((uint32(g0) + 2*uint32(g1)) / 3),
			uint8((uint32(b0) + 2*uint32(b1)) / 3),
			255,
		}
	} else {
		pal[2] = [4]uint8{
			uint8((uint32(r0) + uint32(r1)) / 2),
			uint8((uint32(g0) + uint32(g1)) / 2),
			uint8((uint32(b0) + uint32(b1)) / 2),
			255,
		}
		pal[3] = [4]uint8{0, 0, 0, 0}
	}

	var px [16][4]uint8
	for row := 0; row < 4; row++ {
		sel := b[4+row]
		for col := 0; col < 4; col++ {
			px[row*4+col] = pal[(sel>>(2*uint(col)))&3]
		}
	}
	return px
}

// smoothAlphaRamp builds the 8-value alpha ramp from an endpoint pair.
// a0 > a1 interpolates all six middle values; otherwise four middle
// values are interpolated and the ramp ends in hard 0 and 255 steps.
func smoothAlphaRamp(a0, a1 uint8) [8]uint8 {
	var ramp [8]uint8
	ramp[0] = a0
	ramp[1] = a1
	if a0 > a1 {
		for i := 2; i < 8; i++ {
			ramp[i] = uint8(((8-i)*int(a0) + (i-1)*int(a1)) / 7)
		}
	} else {
		for i := 2; i < 6; i++ {
			ramp[i] = uint8(((6-i)*int(a0) + (i-1)*int(a1)) / 5)
		}
		ramp[6] = 0
		ramp[7] = 255
	}
	return ramp
}

// alphaSelectors unpacks sixteen 3-bit selectors from 6 bytes.
func alphaSelectors(b []byte) [16]uint8 {
	bits := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 |
		uint64(b[3])<<24 | uint64(b[4])<<32 | uint64(b[5])<<40
	var sel [16]uint8
	for i := 0; i < 16; i++ {
		sel[i] = uint8((bits >> (3 * uint(i))) & 7)
	}
	return sel
}

func packAlphaSelectors(sel [16]uint8) [6]byte {
	var bits uint64
	for i := 0; i < 16; i++ {
		bits |= uint64(sel[i]&7) << (3 * uint(i))
	}
	var b [6]byte
	for i := 0; i < 6; i++ {
		b[i] = byte(bits >> (8 * uint(i)))
	}
	return b
}

// decodeOneBlock expands one encoded block into 16 RGBA pixels.
func decodeOneBlock(b []byte, v Variant) ([16][4]uint8, error) {
	switch v {
	case VariantOpaque:
		return decodeColorHalf(b[0:8], false), nil

	case VariantSmoothAlpha:
		px := decodeColorHalf(b[8:16], true)
		ramp := smoothAlphaRamp(b[0], b[1])
		sel := alphaSelectors(b[2:8])
		for i := 0; i < 16; i++ {
			px[i][3] = ramp[sel[i]]
		}
		return px, nil

	case VariantSharpAlpha:
		px := decodeColorHalf(b[16:24], true)
		var table [8]uint8
		copy(table[:], b[0:8])
		sel := alphaSelectors(b[8:14])
		for i := 0; i < 16; i++ {
			px[i][3] = table[sel[i]]
		}
		return px, nil

	default:
		return [16][4]uint8{}, fmt.Errorf("%w: block variant %d", ErrUnsupportedVariant, v)
	}
}

// decodeBlockMip expands a block-family mip payload into an RGBA buffer.
// Pixels of edge blocks that fall outside the image are discarded.
func decodeBlockMip(payload []byte, w, h int, v Variant) ([]byte, error) {
	bsize := blockBytes(v)
	blocksW := (w + 3) / 4
	blocksH := (h + 3) / 4
	if len(payload) != blocksW*blocksH*bsize {
		return nil, fmt.Errorf("%w: expected %d block bytes, got %d",
			ErrPayloadSizeMismatch, blocksW*blocksH*bsize, len(payload))
	}

	pix := make([]byte, w*h*4)
	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			off := (by*blocksW + bx) * bsize
			px, err := decodeOneBlock(payload[off:off+bsize], v)
			if err != nil {
				return nil, err
			}
			for row := 0; row < 4; row++ {
				y := by*4 + row
				if y >= h {
					break
				}
				for col := 0; col < 4; col++ {
					x := bx*4 + col
					if x >= w {
						break
					}
					p := px[row*4+col]
					dst := (y*w + x) * 4
					pix[dst] = p[0]
					pix[dst+1] = p[1]
					pix[dst+2] = p[2]
					pix[dst+3] = p[3]
				}
			}
		}
	}
	return pix, nil
}

// encodeColorHalf picks min/max channel endpoints and maps each pixel to
// the nearest palette entry. Four-color mode is forced for the alpha
// variants so endpoint order never flips the palette meaning.
func encodeColorHalf(px *[16][4]uint8, forceFourColor bool) [8]byte {
	minC := [3]uint8{255, 255, 255}
	maxC := [3]uint8{0, 0, 0}
	for i := 0; i < 16; i++ {
		for c := 0; c < 3; c++ {
			if px[i][c] < minC[c] {
				minC[c] = px[i][c]
			}
			if px[i][c] > maxC[c] {
				maxC[c] = px[i][c]
			}
		}
	}

	c0v := pack565(maxC[0], maxC[1], maxC[2])
	c1v := pack565(minC[0], minC[1], minC[2])
	if c0v < c1v {
		c0v, c1v = c1v, c0v
	}

	var half [8]byte
	binary.LittleEndian.PutUint16(half[0:2], c0v)
	binary.LittleEndian.PutUint16(half[2:4], c1v)

	// Selector mapping is nearest-match against the palette the decoder
	// will reconstruct, not against the raw endpoints.
	r0, g0, b0 := rgb565(c0v)
	r1, g1, b1 := rgb565(c1v)
	var pal [4][3]uint8
	pal[0] = [3]uint8{r0, g0, b0}
	pal[1] = [3]uint8{r1, g1, b1}
	fourColor := forceFourColor || c0v > c1v
	if fourColor {
		pal[2] = [3]uint8{
			uint8((2*uint32(r0) + uint32(r1)) / 3),
			uint8((2*uint32(g0) + uint32(g1)) / 3),
			uint8((2*uint32(b0) + uint32(b1)) / 3),
		}
		pal[3] = [3]uint8{
			uint8((uint32(r0) + 2*uint32(r1)) / 3),
			uint8((uint32(g0) + 2*uint32(g1)) / 3),
			uint8((uint32(b0) + 2*uint32(b1)) / 3),
		}
	} else {
		pal[2] = [3]uint8{
			uint8((uint32(r0) + uint32(r1)) / 2),
			uint8((uint32(g0) + uint32(g1)) / 2),
			uint8((uint32(b0) + uint32(b1)) / 2),
		}
		pal[3] = pal[2] // selector 3 is transparent; never emit it for opaque input
	}

	for row := 0; row < 4; row++ {
		var sel uint8
		for col := 0; col < 4; col++ {
			p := px[row*4+col]
			best := 0
			bestDist := 1 << 30
			limit := 4
			if !fourColor {
				limit = 3
			}
			for s := 0; s < limit; s++ {
				dr := int(p[0]) - int(pal[s][0])
				dg := int(p[1]) - int(pal[s][1])
				db := int(p[2]) - int(pal[s][2])
				d := dr*dr + dg*dg + db*db
				if d < bestDist {
					bestDist = d
					best = s
				}
			}
			sel |= uint8(best) << (2 * uint(col))
		}
		half[4+row] = sel
	}
	return half
}

// encodeOneBlock encodes 16 RGBA pixels into one block.
func encodeOneBlock(px *[16][4]uint8, v Variant) []byte {
	switch v {
	case VariantOpaque:
		half := encodeColorHalf(px, false)
		return half[:]

	case VariantSmoothAlpha:
		out := make([]byte, 16)
		a0, a1 := uint8(0), uint8(255)
		for i := 0; i < 16; i++ {
			if px[i][3] > a0 {
				a0 = px[i][3]
			}
			if px[i][3] < a1 {
				a1 = px[i][3]
			}
		}
		out[0] = a0
		out[1] = a1
		ramp := smoothAlphaRamp(a0, a1)
		var sel [16]uint8
		for i := 0; i < 16; i++ {
			sel[i] = nearestRampIndex(ramp, px[i][3], a0 > a1)
		}
		packed := packAlphaSelectors(sel)
		copy(out[2:8], packed[:])
		half := encodeColorHalf(px, true)
		copy(out[8:16], half[:])
		return out

	case VariantSharpAlpha:
		out := make([]byte, 24)
		minA, maxA := uint8(255), uint8(0)
		for i := 0; i < 16; i++ {
			if px[i][3] < minA {
				minA = px[i][3]
			}
			if px[i][3] > maxA {
				maxA = px[i][3]
			}
		}
		var table [8]uint8
		for i := 0; i < 8; i++ {
			table[i] = uint8(int(minA) + (int(maxA)-int(minA))*i/7)
		}
		copy(out[0:8], table[:])
		var sel [16]uint8
		for i := 0; i < 16; i++ {
			best, bestDist := 0, 1<<30
			for s := 0; s < 8; s++ {
				d := int(px[i][3]) - int(table[s])
				if d < 0 {
					d = -d
				}
				if d < bestDist {
					bestDist = d
					best = s
				}
			}
			sel[i] = uint8(best)
		}
		packed := packAlphaSelectors(sel)
		copy(out[8:14], packed[:])
		half := encodeColorHalf(px, true)
		copy(out[16:24], half[:])
		return out

	default:
		return nil
	}
}

// nearestRampIndex maps an alpha value to the closest ramp slot. In
// five-step mode the hard 0/255 slots only win on an exact match, so
// mid values stay on the interpolated part of the ramp.
func nearestRampIndex(ramp [8]uint8, a uint8, eightStep bool) uint8 {
	best, bestDist := 0, 1<<30
	for s := 0; s < 8; s++ {
		if !eightStep && (s == 6 || s == 7) && ramp[s] != a {
			continue
		}
		d := int(a) - int(ramp[s])
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = s
		}
	}
	return uint8(best)
}

// encodeBlockMip encodes an RGBA buffer into a block-family mip payload.
// Edge blocks replicate the last row/column so padding never bleeds
// arbitrary values into the endpoints.
func encodeBlockMip(pix []byte, w, h int, v Variant) []byte {
	bsize := blockBytes(v)
	blocksW := (w + 3) / 4
	blocksH := (h + 3) / 4
	out := make([]byte, 0, blocksW*blocksH*bsize)

	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			var px [16][4]uint8
			for row := 0; row < 4; row++ {
				y := by*4 + row
				if y >= h {
					y = h - 1
				}
				for col := 0; col < 4; col++ {
					x := bx*4 + col
					if x >= w {
						x = w - 1
					}
					src := (y*w + x) * 4
					px[row*4+col] = [4]uint8{pix[src], pix[src+1], pix[src+2], pix[src+3]}
				}
			}
			out = append(out, encodeOneBlock(&px, v)...)
		}
	}
	return out
}

package texture

import "fmt"

// paletteBytes is the stored size of the 256-entry RGBA color table.
const paletteBytes = 256 * 4

// decodePaletteMip expands index bytes (plus an optional alpha plane)
// into an RGBA buffer using the container's color table.
func decodePaletteMip(pal, payload []byte, w, h int, alphaPlane bool) ([]byte, error) {
	want := w * h
	if alphaPlane {
		want *= 2
	}
	if len(payload) != want {
		return nil, fmt.Errorf("%w: expected %d palette bytes, got %d", ErrPayloadSizeMismatch, want, len(payload))
	}

	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		entry := int(payload[i]) * 4
		dst := i * 4
		pix[dst] = pal[entry]
		pix[dst+1] = pal[entry+1]
		pix[dst+2] = pal[entry+2]
		if alphaPlane {
			pix[dst+3] = payload[w*h+i]
		} else {
			pix[dst+3] = pal[entry+3]
		}
	}
	return pix, nil
}

// paletteBuilder accumulates distinct colors across all mip levels; the
// table is stored once in the container, so every level shares it.
type paletteBuilder struct {
	index map[[4]uint8]uint8
	table []byte
}

func newPaletteBuilder() *paletteBuilder {
	return &paletteBuilder{index: make(map[[4]uint8]uint8, 256)}
}

func (p *paletteBuilder) slot(c [4]uint8) (uint8, error) {
	if idx, ok := p.index[c]; ok {
		return idx, nil
	}
	if len(p.index) >= 256 {
		return 0, fmt.Errorf("%w: more than 256 distinct colors", ErrPaletteOverflow)
	}
	idx := uint8(len(p.index))
	p.index[c] = idx
	p.table = append(p.table, c[0], c[1], c[2], c[3])
	return idx, nil
}

// bytes returns the full 1024-byte table, zero-padding unused entries.
func (p *paletteBuilder) bytes() []byte {
	out := make([]byte, paletteBytes)
	copy(out, p.table)
	return out
}

// encodePaletteMip maps an RGBA buffer onto the shared palette. With an
// alpha plane, palette entries hold only the opaque color and per-pixel
// alpha trails the index plane.
func encodePaletteMip(p *paletteBuilder, pix []byte, w, h int, alphaPlane bool) ([]byte, error) {
	n := w * h
	size := n
	if alphaPlane {
		size *= 2
	}
	out := make([]byte, size)
	for i := 0; i < n; i++ {
		src := i * 4
		c := [4]uint8{pix[src], pix[src+1], pix[src+2], pix[src+3]}
		if alphaPlane {
			out[n+i] = c[3]
			c[3] = 255
		}
		idx, err := p.slot(c)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

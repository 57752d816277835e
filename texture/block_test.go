package texture

import (
	"encoding/binary"
	"testing"
)

func TestDecodeColorHalfModes(t *testing.T) {
	t.Parallel()

	red := pack565(255, 0, 0)
	blue := pack565(0, 0, 255)

	t.Run("four-color", func(t *testing.T) {
		t.Parallel()

		var b [8]byte
		binary.LittleEndian.PutUint16(b[0:2], red)
		binary.LittleEndian.PutUint16(b[2:4], blue)
		// row 0 selectors: 0,1,2,3
		b[4] = 0b11100100

		px := decodeColorHalf(b[:], false)
		if px[0] != [4]uint8{255, 0, 0, 255} {
			t.Fatalf("selector 0 = %v", px[0])
		}
		if px[1] != [4]uint8{0, 0, 255, 255} {
			t.Fatalf("selector 1 = %v", px[1])
		}
		if px[2] != [4]uint8{170, 0, 85, 255} {
			t.Fatalf("selector 2 = %v", px[2])
		}
		if px[3] != [4]uint8{85, 0, 170, 255} {
			t.Fatalf("selector 3 = %v", px[3])
		}
	})

	t.Run("three-color-transparent", func(t *testing.T) {
		t.Parallel()

		var b [8]byte
		// c0 <= c1 selects three-color mode with a transparent slot 3.
		binary.LittleEndian.PutUint16(b[0:2], blue)
		binary.LittleEndian.PutUint16(b[2:4], red)
		b[4] = 0b11100100

		px := decodeColorHalf(b[:], false)
		if px[2] != [4]uint8{127, 0, 127, 255} {
			t.Fatalf("midpoint = %v", px[2])
		}
		if px[3] != [4]uint8{0, 0, 0, 0} {
			t.Fatalf("slot 3 = %v, want transparent black", px[3])
		}
	})

	t.Run("forced-four-color-ignores-order", func(t *testing.T) {
		t.Parallel()

		var b [8]byte
		binary.LittleEndian.PutUint16(b[0:2], blue)
		binary.LittleEndian.PutUint16(b[2:4], red)
		b[4] = 0b11000000 // pixel 3 -> selector 3

		px := decodeColorHalf(b[:], true)
		if px[3][3] != 255 {
			t.Fatalf("forced four-color produced transparency: %v", px[3])
		}
	})
}

func TestSmoothAlphaRamp(t *testing.T) {
	t.Parallel()

	t.Run("eight-step", func(t *testing.T) {
		t.Parallel()

		ramp := smoothAlphaRamp(224, 0)
		want := [8]uint8{224, 0, 192, 160, 128, 96, 64, 32}
		if ramp != want {
			t.Fatalf("ramp = %v, want %v", ramp, want)
		}
	})

	t.Run("six-step-with-hard-ends", func(t *testing.T) {
		t.Parallel()

		ramp := smoothAlphaRamp(0, 255)
		if ramp[0] != 0 || ramp[1] != 255 {
			t.Fatalf("endpoints = %v", ramp)
		}
		if ramp[6] != 0 || ramp[7] != 255 {
			t.Fatalf("hard steps = %d,%d, want 0,255", ramp[6], ramp[7])
		}
	})
}

func TestSharpAlphaTableIsVerbatim(t *testing.T) {
	t.Parallel()

	b := make([]byte, 24)
	table := []byte{7, 19, 42, 80, 120, 200, 230, 255}
	copy(b[0:8], table)
	// selectors 0..7 for the first 8 pixels, then 0s
	sel := [16]uint8{0, 1, 2, 3, 4, 5, 6, 7}
	packed := packAlphaSelectors(sel)
	copy(b[8:14], packed[:])
	binary.LittleEndian.PutUint16(b[16:18], pack565(255, 255, 255))
	binary.LittleEndian.PutUint16(b[18:20], pack565(0, 0, 0))

	px, err := decodeOneBlock(b, VariantSharpAlpha)
	if err != nil {
		t.Fatalf("decodeOneBlock: %v", err)
	}
	for i := 0; i < 8; i++ {
		if px[i][3] != table[i] {
			t.Fatalf("pixel %d alpha = %d, want %d", i, px[i][3], table[i])
		}
	}
}

func TestAlphaSelectorsRoundTrip(t *testing.T) {
	t.Parallel()

	sel := [16]uint8{0, 7, 3, 5, 1, 6, 2, 4, 7, 0, 5, 3, 6, 1, 4, 2}
	packed := packAlphaSelectors(sel)
	if got := alphaSelectors(packed[:]); got != sel {
		t.Fatalf("selector round-trip: got %v, want %v", got, sel)
	}
}

func TestRGB565PureChannels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		r, g, b uint8
	}{
		{name: "red", r: 255},
		{name: "green", g: 255},
		{name: "blue", b: 255},
		{name: "white", r: 255, g: 255, b: 255},
		{name: "black"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r, g, b := rgb565(pack565(tc.r, tc.g, tc.b))
			if r != tc.r || g != tc.g || b != tc.b {
				t.Fatalf("565 round-trip (%d,%d,%d) -> (%d,%d,%d)", tc.r, tc.g, tc.b, r, g, b)
			}
		})
	}
}

func TestBlockMipNonAlignedDimensions(t *testing.T) {
	t.Parallel()

	// 5x7 needs 2x2 blocks; out-of-image pixels must be discarded.
	img := blockPattern(8, 8)
	payload := encodeBlockMip(img.Pix[:5*7*4], 5, 7, VariantOpaque)
	if len(payload) != 2*2*8 {
		t.Fatalf("payload length %d, want %d", len(payload), 2*2*8)
	}

	pix, err := decodeBlockMip(payload, 5, 7, VariantOpaque)
	if err != nil {
		t.Fatalf("decodeBlockMip: %v", err)
	}
	if len(pix) != 5*7*4 {
		t.Fatalf("pixel length %d, want %d", len(pix), 5*7*4)
	}
}

package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestHalveDimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sw, sh, dw, dh int
	}{
		{4, 4, 2, 2},
		{5, 5, 3, 3},
		{600, 600, 300, 300},
		{3, 1, 2, 1},
		{1, 1, 1, 1},
		{2, 7, 1, 4},
	}
	for _, tc := range tests {
		dst := Halve(image.NewRGBA(image.Rect(0, 0, tc.sw, tc.sh)))
		if dst.Rect.Dx() != tc.dw || dst.Rect.Dy() != tc.dh {
			t.Errorf("Halve %dx%d: got %dx%d, want %dx%d",
				tc.sw, tc.sh, dst.Rect.Dx(), dst.Rect.Dy(), tc.dw, tc.dh)
		}
	}
}

func TestHalveAveragesBoxes(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	// Left box: two black + two white pixels per column pair.
	src.Set(0, 0, color.RGBA{0, 0, 0, 255})
	src.Set(1, 0, color.RGBA{255, 255, 255, 255})
	src.Set(0, 1, color.RGBA{0, 0, 0, 255})
	src.Set(1, 1, color.RGBA{255, 255, 255, 255})
	// Right box: uniform red.
	for y := 0; y < 2; y++ {
		for x := 2; x < 4; x++ {
			src.Set(x, y, color.RGBA{200, 0, 0, 255})
		}
	}

	dst := Halve(src)
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{127, 127, 127, 255}) {
		t.Errorf("mixed box averaged to %v", got)
	}
	if got := dst.RGBAAt(1, 0); got != (color.RGBA{200, 0, 0, 255}) {
		t.Errorf("uniform box averaged to %v", got)
	}
}

func TestHalvePartialEdgeBox(t *testing.T) {
	t.Parallel()

	// 3x1: the second destination pixel covers only one source pixel,
	// which must pass through unaveraged.
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.Set(0, 0, color.RGBA{10, 20, 30, 255})
	src.Set(1, 0, color.RGBA{30, 40, 50, 255})
	src.Set(2, 0, color.RGBA{99, 88, 77, 66})

	dst := Halve(src)
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{20, 30, 40, 255}) {
		t.Errorf("full box averaged to %v", got)
	}
	if got := dst.RGBAAt(1, 0); got != (color.RGBA{99, 88, 77, 66}) {
		t.Errorf("partial box gave %v", got)
	}
}

func TestHalveIgnoresSourceOrigin(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(5, 7, 9, 11))
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		for x := src.Rect.Min.X; x < src.Rect.Max.X; x++ {
			src.Set(x, y, color.RGBA{80, 90, 100, 255})
		}
	}

	dst := Halve(src)
	if dst.Rect.Min != (image.Point{}) {
		t.Fatalf("destination not zero-based: %v", dst.Rect)
	}
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{80, 90, 100, 255}) {
		t.Errorf("offset source averaged to %v", got)
	}
}

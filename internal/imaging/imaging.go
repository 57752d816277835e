// Package imaging holds small RGBA raster helpers shared by the texture
// mip generator and the pyramid level builder.
package imaging

import "image"

// Halve box-filters src down to ceil(w/2) x ceil(h/2). Each destination
// pixel is the average of the 2x2 source box under it; boxes clipped by
// an odd right or bottom edge average the pixels that remain.
func Halve(src *image.RGBA) *image.RGBA {
	sw := src.Rect.Dx()
	sh := src.Rect.Dy()
	dw := (sw + 1) / 2
	dh := (sh + 1) / 2
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for dy := 0; dy < dh; dy++ {
		for dx := 0; dx < dw; dx++ {
			var sum [4]uint32
			var n uint32
			for oy := 0; oy < 2; oy++ {
				sy := dy*2 + oy
				if sy >= sh {
					continue
				}
				for ox := 0; ox < 2; ox++ {
					sx := dx*2 + ox
					if sx >= sw {
						continue
					}
					off := src.PixOffset(src.Rect.Min.X+sx, src.Rect.Min.Y+sy)
					sum[0] += uint32(src.Pix[off])
					sum[1] += uint32(src.Pix[off+1])
					sum[2] += uint32(src.Pix[off+2])
					sum[3] += uint32(src.Pix[off+3])
					n++
				}
			}
			off := dst.PixOffset(dx, dy)
			dst.Pix[off] = uint8(sum[0] / n)
			dst.Pix[off+1] = uint8(sum[1] / n)
			dst.Pix[off+2] = uint8(sum[2] / n)
			dst.Pix[off+3] = uint8(sum[3] / n)
		}
	}

	return dst
}

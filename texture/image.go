package texture

import "image"

// Image is a decoded texture: always RGBA8, mip level 0 only.
// Pix holds exactly Width*Height*4 bytes in row-major order.
type Image struct {
	Width    uint32
	Height   uint32
	MipCount uint32
	NonPow2  bool
	Pix      []byte
}

// RGBA wraps the pixel buffer in an *image.RGBA without copying.
func (im *Image) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    im.Pix,
		Stride: int(im.Width) * 4,
		Rect:   image.Rect(0, 0, int(im.Width), int(im.Height)),
	}
}

package hdr

import (
	"image"
	"image/color"

	hdrimage "github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"
)

// RGB is a linear-light pixel with one float32 per channel.
// Values are radiances and may exceed 1.
type RGB struct {
	R, G, B float32
}

// Image is an in-memory Radiance picture decoded to linear-light pixels.
type Image struct {
	// Pix holds the image's pixels in row-major order.
	Pix []RGB
	// Stride is the Pix distance between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

var (
	_ image.Image    = (*Image)(nil)
	_ hdrimage.Image = (*Image)(nil)
)

// NewImage creates a new image with the given bounds.
func NewImage(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]RGB, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

// Bounds returns the domain for which At can return non-zero color.
func (img *Image) Bounds() image.Rectangle {
	return img.Rect
}

// ColorModel returns the Image's color model.
func (img *Image) ColorModel() color.Model {
	return hdrcolor.RGBModel
}

// Size returns the number of pixels.
func (img *Image) Size() int {
	return img.Rect.Dx() * img.Rect.Dy()
}

// PixOffset returns the index into Pix for the pixel at (x, y).
func (img *Image) PixOffset(x, y int) int {
	return (y-img.Rect.Min.Y)*img.Stride + (x - img.Rect.Min.X)
}

// RGBAt returns the linear-light pixel at (x, y).
func (img *Image) RGBAt(x, y int) RGB {
	if !(image.Point{x, y}.In(img.Rect)) {
		return RGB{}
	}
	return img.Pix[img.PixOffset(x, y)]
}

// At returns the color of the pixel at (x, y).
func (img *Image) At(x, y int) color.Color {
	return img.HDRAt(x, y)
}

// HDRAt returns the HDR pixel color at (x, y).
func (img *Image) HDRAt(x, y int) hdrcolor.Color {
	p := img.RGBAt(x, y)
	return hdrcolor.RGB{R: float64(p.R), G: float64(p.G), B: float64(p.B)}
}

// SetRGB sets the pixel at (x, y) to the given values.
func (img *Image) SetRGB(x, y int, p RGB) {
	if !(image.Point{x, y}.In(img.Rect)) {
		return
	}
	img.Pix[img.PixOffset(x, y)] = p
}

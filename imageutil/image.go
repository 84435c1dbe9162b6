// Package imageutil holds the pixel grid shared by every stage of the
// PNG-to-glyph pipeline, along with the resampler and luminance helpers
// that operate on it.
package imageutil

import (
	"fmt"
	"image"
	"image/color"
)

// Pixel is a non-premultiplied 8-bit RGBA sample.
type Pixel struct {
	R, G, B, A uint8
}

// ToColor converts a Pixel to color.NRGBA for use with the standard
// library.
func (p Pixel) ToColor() color.NRGBA {
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

// PixelFromColor converts any color.Color to a non-premultiplied Pixel.
func PixelFromColor(c color.Color) Pixel {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pixel{R: n.R, G: n.G, B: n.B, A: n.A}
}

func (p Pixel) String() string {
	return fmt.Sprintf("{%d,%d,%d,%d}", p.R, p.G, p.B, p.A)
}

// RasterImage is a dense row-major grid of Pixels. len(Pix) is always
// Width*Height.
//
// RasterImage implements image.Image so it can be handed straight to
// image/png or golang.org/x/image/draw.
type RasterImage struct {
	Width  int
	Height int
	Pix    []Pixel
}

// NewRasterImage allocates a zeroed (fully transparent black) image.
func NewRasterImage(width, height int) *RasterImage {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("imageutil: negative dimensions %dx%d", width, height))
	}
	return &RasterImage{
		Width:  width,
		Height: height,
		Pix:    make([]Pixel, width*height),
	}
}

// FromImage copies any image.Image into a RasterImage, converting every
// sample to non-premultiplied RGBA.
func FromImage(img image.Image) *RasterImage {
	bounds := img.Bounds()
	raster := NewRasterImage(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			raster.SetPixel(x-bounds.Min.X, y-bounds.Min.Y, PixelFromColor(img.At(x, y)))
		}
	}
	return raster
}

// Offset returns the index of (x, y) in Pix.
func (img *RasterImage) Offset(x, y int) int {
	return y*img.Width + x
}

// InBounds reports whether (x, y) addresses a pixel of the image.
func (img *RasterImage) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < img.Width && y < img.Height
}

// PixelAt returns the pixel at (x, y), or the zero pixel when (x, y) lies
// outside the image.
func (img *RasterImage) PixelAt(x, y int) Pixel {
	if !img.InBounds(x, y) {
		return Pixel{}
	}
	return img.Pix[img.Offset(x, y)]
}

// SetPixel sets the pixel at (x, y). Out-of-range writes are ignored.
func (img *RasterImage) SetPixel(x, y int, p Pixel) {
	if !img.InBounds(x, y) {
		return
	}
	img.Pix[img.Offset(x, y)] = p
}

// Row returns the pixels of row y. The slice aliases Pix.
func (img *RasterImage) Row(y int) []Pixel {
	start := y * img.Width
	return img.Pix[start : start+img.Width]
}

// ColorModel implements image.Image.
func (img *RasterImage) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (img *RasterImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// At implements image.Image.
func (img *RasterImage) At(x, y int) color.Color {
	return img.PixelAt(x, y).ToColor()
}

package asciipng

import (
	"math"
	"unicode/utf8"

	"github.com/wbrown/asciipng/imageutil"
	"github.com/wbrown/asciipng/oops"
)

// DefaultRamp orders glyphs from least to most ink.
var DefaultRamp = Ramp{'.', '+', '*', '#', '@'}

// Ramp is a luminance-ordered glyph sequence: index 0 is used for the
// darkest pixels and the last index for the brightest.
type Ramp []rune

// NewRamp builds a Ramp from a string, one glyph per rune.
func NewRamp(glyphs string) (Ramp, error) {
	if glyphs == "" {
		return nil, oops.New(ErrInvalidRamp, "ramp is empty")
	}
	if !utf8.ValidString(glyphs) {
		return nil, oops.New(ErrInvalidRamp, "ramp %q is not valid UTF-8", glyphs)
	}
	return Ramp([]rune(glyphs)), nil
}

// Glyph maps a luminance in [0, 1] to a glyph:
// floor(L * (len-1)), clamped to the ramp.
func (r Ramp) Glyph(luminance float64) rune {
	idx := int(math.Floor(luminance * float64(len(r)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > len(r)-1 {
		idx = len(r) - 1
	}
	return r[idx]
}

// Cell is one character position of the rendered art.
type Cell struct {
	Glyph rune
	Color imageutil.Pixel
	// Blank cells come from fully transparent pixels. They render as a
	// plain space with no color.
	Blank bool
}

// RenderedArt is a Width x Height grid of cells in row-major order.
type RenderedArt struct {
	Width  int
	Height int
	Cells  []Cell
}

// Row returns the cells of row y.
func (art RenderedArt) Row(y int) []Cell {
	return art.Cells[y*art.Width : (y+1)*art.Width]
}

// Render maps every pixel of img to a cell using the default ramp.
func Render(img *imageutil.RasterImage) RenderedArt {
	return DefaultRamp.Render(img)
}

// Render maps every pixel of img to a cell. Pixels with alpha 0 become
// blank cells; every other pixel gets the glyph for its luminance and keeps
// its RGB color.
func (r Ramp) Render(img *imageutil.RasterImage) RenderedArt {
	art := RenderedArt{
		Width:  img.Width,
		Height: img.Height,
		Cells:  make([]Cell, len(img.Pix)),
	}
	for i, p := range img.Pix {
		if p.A == 0 {
			art.Cells[i] = Cell{Glyph: ' ', Blank: true}
			continue
		}
		art.Cells[i] = Cell{
			Glyph: r.Glyph(imageutil.Luminance(p)),
			Color: imageutil.Pixel{R: p.R, G: p.G, B: p.B, A: 0xFF},
		}
	}
	return art
}

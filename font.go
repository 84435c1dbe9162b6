package asciipng

import (
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/wbrown/asciipng/imageutil"
	"github.com/wbrown/asciipng/oops"
)

const (
	// GlyphWidth and GlyphHeight define the character cell size in pixels
	// before scaling.
	GlyphWidth  = 8
	GlyphHeight = 8
)

// GlyphBitmap represents an 8x8 character as a 64-bit integer.
// Each bit represents a pixel: 1 = foreground, 0 = background.
type GlyphBitmap uint64

// getBit checks if a specific bit is set in the bitmap
func (g GlyphBitmap) getBit(x, y int) bool {
	if x < 0 || x >= GlyphWidth || y < 0 || y >= GlyphHeight {
		return false
	}
	return g&(1<<(y*GlyphWidth+x)) != 0
}

// setBit sets a specific bit in the bitmap
func (g *GlyphBitmap) setBit(x, y int, value bool) {
	if x < 0 || x >= GlyphWidth || y < 0 || y >= GlyphHeight {
		return
	}
	pos := y*GlyphWidth + x
	if value {
		*g |= 1 << pos
	} else {
		*g &= ^(1 << pos)
	}
}

// FontRenderer rasterises RenderedArt into an image, drawing each cell's
// glyph in its color on a black background. Glyph bitmaps for the ramp are
// computed once, so a FontRenderer is safe for concurrent use.
type FontRenderer struct {
	font   *truetype.Font
	glyphs map[rune]GlyphBitmap
	scale  int
}

// NewFontRenderer parses a TrueType font (Go Mono when ttf is nil) and
// pre-renders the glyphs of ramp. Output images are scaled by scale, which
// is raised to 1 if smaller.
func NewFontRenderer(ttf []byte, ramp Ramp, scale int) (*FontRenderer, error) {
	if ttf == nil {
		ttf = gomono.TTF
	}
	ttfFont, err := freetype.ParseFont(ttf)
	if err != nil {
		return nil, oops.New(err, "failed to parse font")
	}
	if scale < 1 {
		scale = 1
	}

	fr := &FontRenderer{
		font:   ttfFont,
		glyphs: make(map[rune]GlyphBitmap, len(ramp)+1),
		scale:  scale,
	}
	fr.glyphs[' '] = 0
	for _, r := range ramp {
		fr.glyphs[r] = renderGlyphToBitmap(ttfFont, r)
	}
	return fr, nil
}

// Glyph returns the bitmap for a rune, rasterising it on demand when it is
// not part of the pre-rendered ramp.
func (fr *FontRenderer) Glyph(r rune) GlyphBitmap {
	if bitmap, ok := fr.glyphs[r]; ok {
		return bitmap
	}
	return renderGlyphToBitmap(fr.font, r)
}

// renderGlyphToBitmap renders a single glyph to an 8x8 bitmap.
//
// The glyph is drawn into an alpha mask so anti-aliased edge coverage is
// kept, then thresholded at 25% coverage; a 50% cut drops thin strokes
// such as the dot of '.' at this size. The baseline comes from the face
// metrics so descenders stay inside the cell.
func renderGlyphToBitmap(ttfFont *truetype.Font, r rune) GlyphBitmap {
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    float64(GlyphHeight),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	img := image.NewAlpha(image.Rect(0, 0, GlyphWidth, GlyphHeight))

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttfFont)
	ctx.SetFontSize(float64(GlyphHeight))
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	metrics := face.Metrics()
	ascent := metrics.Ascent.Round()
	descent := metrics.Descent.Round()
	baselineY := (GlyphHeight + ascent - descent) / 2

	if _, err := ctx.DrawString(string(r), freetype.Pt(0, baselineY)); err != nil {
		return 0
	}

	var bitmap GlyphBitmap
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if img.AlphaAt(x, y).A > 64 {
				bitmap.setBit(x, y, true)
			}
		}
	}
	return bitmap
}

// Render draws the art at one pixel per bitmap bit and then scales it up
// with nearest-neighbor sampling so glyph edges stay hard.
func (fr *FontRenderer) Render(art RenderedArt) *image.RGBA {
	base := image.NewRGBA(image.Rect(0, 0, art.Width*GlyphWidth, art.Height*GlyphHeight))
	draw.Draw(base, base.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for y := 0; y < art.Height; y++ {
		for x, cell := range art.Row(y) {
			if cell.Blank {
				continue
			}
			fr.renderBitmap(base, fr.Glyph(cell.Glyph), x*GlyphWidth, y*GlyphHeight, cell.Color)
		}
	}

	if fr.scale == 1 {
		return base
	}
	scaled := image.NewRGBA(image.Rect(0, 0, base.Bounds().Dx()*fr.scale, base.Bounds().Dy()*fr.scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), base, base.Bounds(), draw.Src, nil)
	return scaled
}

// renderBitmap paints the set bits of bitmap at (startX, startY).
func (fr *FontRenderer) renderBitmap(img *image.RGBA, bitmap GlyphBitmap, startX, startY int, fg imageutil.Pixel) {
	c := color.RGBA{R: fg.R, G: fg.G, B: fg.B, A: 0xFF}
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if bitmap.getBit(x, y) {
				img.SetRGBA(startX+x, startY+y, c)
			}
		}
	}
}

// SavePNG renders the art and writes it to path. Paths ending in .jpg or
// .gif pick those encoders instead.
func (fr *FontRenderer) SavePNG(art RenderedArt, path string) error {
	if err := imageutil.SaveImage(fr.Render(art), path); err != nil {
		return oops.New(err, "failed to save rendered art")
	}
	return nil
}

// Package asciipng turns PNG images into colored character art.
//
// The pipeline runs in order: the chunks are parsed, the IHDR header is
// interpreted, IDAT data is inflated and its scanlines are unfiltered, the
// raster is bilinearly resampled to the requested width, and every pixel is
// mapped to a glyph by luminance. Only 8-bit non-interlaced truecolor
// images, with or without alpha, are supported.
package asciipng

import (
	"github.com/rs/zerolog"

	"github.com/wbrown/asciipng/imageutil"
	"github.com/wbrown/asciipng/oops"
)

// DefaultMaxPixels bounds the decoded and resampled image size.
const DefaultMaxPixels = 1 << 26

// Converter runs the decode and render pipeline with a fixed configuration.
// It is immutable after construction and safe for concurrent use.
type Converter struct {
	ramp      Ramp
	log       zerolog.Logger
	maxPixels int
}

// ConverterOption is a functional option for configuring a Converter.
type ConverterOption func(*Converter)

// NewConverter creates a Converter with the given options.
// Defaults: DefaultRamp, a disabled logger, DefaultMaxPixels.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{
		ramp:      DefaultRamp,
		log:       zerolog.Nop(),
		maxPixels: DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithRamp sets the glyph ramp. An empty ramp leaves the default in place;
// use NewRamp to validate user input.
func WithRamp(ramp Ramp) ConverterOption {
	return func(c *Converter) {
		if len(ramp) > 0 {
			c.ramp = ramp
		}
	}
}

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(log zerolog.Logger) ConverterOption {
	return func(c *Converter) {
		c.log = log
	}
}

// WithMaxPixels caps width*height of both the source image and the
// resampled image. Values <= 0 leave the default in place.
func WithMaxPixels(max int) ConverterOption {
	return func(c *Converter) {
		if max > 0 {
			c.maxPixels = max
		}
	}
}

// Ramp returns the converter's glyph ramp.
func (c *Converter) Ramp() Ramp {
	return c.ramp
}

// Decode parses a PNG byte buffer into a raster image.
func (c *Converter) Decode(buf []byte) (*imageutil.RasterImage, error) {
	chunks, err := ParseChunks(buf)
	if err != nil {
		return nil, err
	}
	hdr, err := InterpretHeader(chunks)
	if err != nil {
		return nil, err
	}
	if uint64(hdr.Width)*uint64(hdr.Height) > uint64(c.maxPixels) {
		return nil, oops.New(ErrInvalidGeometry, "%dx%d image exceeds %d pixels", hdr.Width, hdr.Height, c.maxPixels)
	}
	c.log.Debug().
		Int("chunks", len(chunks)).
		Stringer("header", hdr).
		Msg("parsed PNG header")
	for _, chunk := range chunks {
		switch chunk.Type {
		case chunkIHDR, chunkIDAT, chunkIEND:
		default:
			if chunk.Critical() {
				c.log.Debug().Str("type", chunk.Type).Msg("ignoring critical chunk")
			}
		}
	}

	img, err := Reconstruct(chunks, hdr)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Resize resamples img to targetWidth columns, keeping the aspect ratio.
func (c *Converter) Resize(img *imageutil.RasterImage, targetWidth int) (*imageutil.RasterImage, error) {
	if targetWidth <= 0 {
		return nil, oops.New(ErrInvalidGeometry, "target width %d must be positive", targetWidth)
	}
	if targetWidth > c.maxPixels {
		return nil, oops.New(ErrInvalidGeometry, "target width %d exceeds %d pixels", targetWidth, c.maxPixels)
	}
	targetHeight := imageutil.TargetHeight(img.Width, img.Height, targetWidth)
	if targetHeight <= 0 {
		return nil, oops.New(ErrInvalidGeometry, "%dx%d image at width %d has no rows", img.Width, img.Height, targetWidth)
	}
	if uint64(targetWidth)*uint64(targetHeight) > uint64(c.maxPixels) {
		return nil, oops.New(ErrInvalidGeometry, "%dx%d output exceeds %d pixels", targetWidth, targetHeight, c.maxPixels)
	}
	c.log.Debug().
		Int("from_width", img.Width).
		Int("from_height", img.Height).
		Int("to_width", targetWidth).
		Int("to_height", targetHeight).
		Msg("resampling")
	return imageutil.Resample(img, targetWidth, targetHeight), nil
}

// Render maps a raster image to glyph cells with the converter's ramp.
func (c *Converter) Render(img *imageutil.RasterImage) RenderedArt {
	return c.ramp.Render(img)
}

// DecodeAndRender runs the full pipeline.
func (c *Converter) DecodeAndRender(buf []byte, targetWidth int) (RenderedArt, error) {
	img, err := c.Decode(buf)
	if err != nil {
		return RenderedArt{}, err
	}
	resized, err := c.Resize(img, targetWidth)
	if err != nil {
		return RenderedArt{}, err
	}
	return c.Render(resized), nil
}

var defaultConverter = NewConverter()

// Decode parses a PNG byte buffer with default options.
func Decode(buf []byte) (*imageutil.RasterImage, error) {
	return defaultConverter.Decode(buf)
}

// DecodeAndRender decodes buf and renders it targetWidth glyphs wide with
// default options.
func DecodeAndRender(buf []byte, targetWidth int) (RenderedArt, error) {
	return defaultConverter.DecodeAndRender(buf, targetWidth)
}

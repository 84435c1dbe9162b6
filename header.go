package asciipng

import (
	"encoding/binary"
	"fmt"

	"github.com/wbrown/asciipng/oops"
)

// ColorType is the IHDR color type byte. Only the two truecolor layouts
// are decoded.
type ColorType uint8

const (
	Truecolor          ColorType = 2
	TruecolorWithAlpha ColorType = 6
)

func (ct ColorType) String() string {
	switch ct {
	case 0:
		return "grayscale"
	case Truecolor:
		return "truecolor"
	case 3:
		return "indexed"
	case 4:
		return "grayscale+alpha"
	case TruecolorWithAlpha:
		return "truecolor+alpha"
	}
	return fmt.Sprintf("colortype(%d)", uint8(ct))
}

// BytesPerPixel returns the number of sample bytes per pixel in a scanline
// for 8-bit images, or 0 for unsupported color types.
func (ct ColorType) BytesPerPixel() int {
	switch ct {
	case Truecolor:
		return 3
	case TruecolorWithAlpha:
		return 4
	}
	return 0
}

// ihdrLength is the fixed size of the IHDR payload.
const ihdrLength = 13

// ImageHeader is the geometry and encoding read from the IHDR chunk.
type ImageHeader struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         ColorType
	CompressionMethod uint8
	FilterMethod      uint8
	Interlaced        bool
}

// BytesPerPixel is the sample bytes per pixel in each scanline.
func (h ImageHeader) BytesPerPixel() int {
	return h.ColorType.BytesPerPixel()
}

// Stride is the length of one scanline including its leading filter byte.
func (h ImageHeader) Stride() int {
	return 1 + int(h.Width)*h.BytesPerPixel()
}

func (h ImageHeader) String() string {
	return fmt.Sprintf("%dx%d %s %d-bit interlaced=%t", h.Width, h.Height, h.ColorType, h.BitDepth, h.Interlaced)
}

// InterpretHeader reads the first IHDR chunk and rejects images this
// decoder cannot reconstruct.
func InterpretHeader(chunks []Chunk) (ImageHeader, error) {
	var ihdr *Chunk
	for i := range chunks {
		if chunks[i].Type == chunkIHDR {
			ihdr = &chunks[i]
			break
		}
	}
	if ihdr == nil {
		return ImageHeader{}, oops.New(ErrMissingIHDR, "no IHDR among %d chunks", len(chunks))
	}
	if len(ihdr.Data) < ihdrLength {
		return ImageHeader{}, oops.New(ErrTruncatedChunk, "IHDR payload is %d bytes, want %d", len(ihdr.Data), ihdrLength)
	}

	data := ihdr.Data
	hdr := ImageHeader{
		Width:             binary.BigEndian.Uint32(data[0:4]),
		Height:            binary.BigEndian.Uint32(data[4:8]),
		BitDepth:          data[8],
		ColorType:         ColorType(data[9]),
		CompressionMethod: data[10],
		FilterMethod:      data[11],
		Interlaced:        data[12] != 0,
	}

	if hdr.Interlaced {
		return hdr, oops.New(ErrInterlacedUnsupported, "interlace method %d", data[12])
	}
	if hdr.ColorType.BytesPerPixel() == 0 {
		return hdr, oops.New(ErrUnsupportedColorType, "%s", hdr.ColorType)
	}
	if hdr.BitDepth != 8 {
		return hdr, oops.New(ErrUnsupportedBitDepth, "%d bits per sample", hdr.BitDepth)
	}
	if hdr.Width == 0 || hdr.Height == 0 {
		return hdr, oops.New(ErrInvalidGeometry, "image is %dx%d", hdr.Width, hdr.Height)
	}
	return hdr, nil
}

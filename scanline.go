package asciipng

import (
	"fmt"

	"github.com/wbrown/asciipng/imageutil"
	"github.com/wbrown/asciipng/oops"
)

// FilterType is the per-scanline filter byte.
type FilterType uint8

const (
	FilterNone FilterType = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth
)

func (ft FilterType) String() string {
	switch ft {
	case FilterNone:
		return "none"
	case FilterSub:
		return "sub"
	case FilterUp:
		return "up"
	case FilterAverage:
		return "average"
	case FilterPaeth:
		return "paeth"
	}
	return fmt.Sprintf("filter(%d)", uint8(ft))
}

// maxInflatedSize caps the decompressed scanline buffer at 1 GiB.
const maxInflatedSize = 1 << 30

// Reconstruct inflates the concatenated IDAT payloads and reverses the
// scanline filters, producing a Width*Height pixel grid.
//
// Rows are reconstructed in order, in place in the inflated buffer, so the
// row above is always the already reconstructed one. Truecolor images get
// an alpha of 255.
func Reconstruct(chunks []Chunk, hdr ImageHeader) (*imageutil.RasterImage, error) {
	bpp := hdr.BytesPerPixel()
	if bpp == 0 {
		return nil, oops.New(ErrUnsupportedColorType, "%s", hdr.ColorType)
	}
	if hdr.Width == 0 || hdr.Height == 0 {
		return nil, oops.New(ErrInvalidGeometry, "image is %dx%d", hdr.Width, hdr.Height)
	}
	total := uint64(hdr.Height) * (1 + uint64(hdr.Width)*uint64(bpp))
	if total > maxInflatedSize {
		return nil, oops.New(ErrInvalidGeometry, "%dx%d needs %d bytes of scanlines", hdr.Width, hdr.Height, total)
	}

	var compressed []byte
	for _, idat := range chunksOfType(chunks, chunkIDAT) {
		compressed = append(compressed, idat.Data...)
	}
	raw, err := inflate(compressed, int(total))
	if err != nil {
		return nil, err
	}

	width, height := int(hdr.Width), int(hdr.Height)
	stride := hdr.Stride()
	img := imageutil.NewRasterImage(width, height)

	// The row above the first one is all zeroes.
	prev := make([]byte, stride-1)
	for y := 0; y < height; y++ {
		line := raw[y*stride : (y+1)*stride]
		cur := line[1:]
		if err := unfilter(FilterType(line[0]), cur, prev, bpp); err != nil {
			return nil, oops.New(err, "row %d", y)
		}

		row := img.Row(y)
		for x := range row {
			s := cur[x*bpp : x*bpp+bpp]
			p := imageutil.Pixel{R: s[0], G: s[1], B: s[2], A: 0xFF}
			if bpp == 4 {
				p.A = s[3]
			}
			row[x] = p
		}
		prev = cur
	}

	return img, nil
}

// unfilter reverses one scanline filter in place. cur holds the filtered
// samples of the current row, prev the reconstructed samples of the row
// above, and bpp is the distance in bytes to the pixel on the left. Sums
// wrap modulo 256.
func unfilter(ft FilterType, cur, prev []byte, bpp int) error {
	switch ft {
	case FilterNone:
	case FilterSub:
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case FilterUp:
		for i := range cur {
			cur[i] += prev[i]
		}
	case FilterAverage:
		for i := range cur {
			left := 0
			if i >= bpp {
				left = int(cur[i-bpp])
			}
			cur[i] += uint8((left + int(prev[i])) / 2)
		}
	case FilterPaeth:
		for i := range cur {
			left, upperLeft := 0, 0
			if i >= bpp {
				left = int(cur[i-bpp])
				upperLeft = int(prev[i-bpp])
			}
			cur[i] += uint8(paeth(left, int(prev[i]), upperLeft))
		}
	default:
		return oops.New(ErrInvalidFilter, "filter type %d", uint8(ft))
	}
	return nil
}

// paeth picks whichever of left (a), above (b) and upper-left (c) is
// closest to a + b - c, preferring a, then b, then c on ties.
func paeth(a, b, c int) int {
	p := a + b - c
	pa := abs(p - a)
	pb := abs(p - b)
	pc := abs(p - c)

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

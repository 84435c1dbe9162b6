package asciipng

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/asciipng/imageutil"
)

func TestPaeth(t *testing.T) {
	tests := []struct {
		a, b, c, want int
	}{
		{0, 0, 0, 0},
		{10, 20, 0, 20},
		{10, 10, 0, 10},
		{20, 10, 0, 20},
		{10, 20, 30, 10},
		{20, 10, 30, 10},
		{50, 60, 55, 55},
		{255, 0, 255, 0},
		{100, 100, 100, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, paeth(tt.a, tt.b, tt.c), "paeth(%d, %d, %d)", tt.a, tt.b, tt.c)
	}
}

func TestFilterTypeString(t *testing.T) {
	assert.Equal(t, "paeth", FilterPaeth.String())
	assert.Equal(t, "filter(7)", FilterType(7).String())
}

func TestUnfilterWraps(t *testing.T) {
	cur := []byte{200, 0, 0, 100, 0, 0}
	prev := []byte{0, 0, 0, 0, 0, 0}
	require.NoError(t, unfilter(FilterSub, cur, prev, 3))
	assert.Equal(t, []byte{200, 0, 0, 44, 0, 0}, cur)

	cur = []byte{10, 20, 30}
	prev = []byte{250, 250, 250}
	require.NoError(t, unfilter(FilterUp, cur, prev, 3))
	assert.Equal(t, []byte{4, 14, 24}, cur)
}

func TestUnfilterAverageFirstPixel(t *testing.T) {
	// Without a left neighbor only half the value above is added.
	cur := []byte{1, 1, 1, 1}
	prev := []byte{9, 9, 9, 9}
	require.NoError(t, unfilter(FilterAverage, cur, prev, 2))
	// 1+4=5, 1+4=5, then 1+(5+9)/2=8 twice.
	assert.Equal(t, []byte{5, 5, 8, 8}, cur)
}

func TestReconstructNoFilter(t *testing.T) {
	raw := []byte{0, 255, 0, 0, 0, 255, 0}
	chunks := []Chunk{{Type: chunkIDAT, Data: deflate(t, raw)}}
	hdr := ImageHeader{Width: 2, Height: 1, BitDepth: 8, ColorType: Truecolor}

	img, err := Reconstruct(chunks, hdr)
	require.NoError(t, err)
	assert.Equal(t, []imageutil.Pixel{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
	}, img.Pix)
}

func TestReconstructEachFilter(t *testing.T) {
	filters := []FilterType{FilterNone, FilterSub, FilterUp, FilterAverage, FilterPaeth}
	for _, withAlpha := range []bool{false, true} {
		src := imageutil.CreateNoiseImage(7, 5, 42, withAlpha)
		for _, ft := range filters {
			t.Run(ft.String(), func(t *testing.T) {
				img, err := Decode(encodeRaster(t, src, withAlpha, ft))
				require.NoError(t, err)
				assert.Equal(t, src.Pix, img.Pix)
			})
		}
		t.Run("mixed", func(t *testing.T) {
			img, err := Decode(encodeRaster(t, src, withAlpha, FilterPaeth, FilterAverage, FilterNone, FilterUp, FilterSub))
			require.NoError(t, err)
			assert.Equal(t, src.Pix, img.Pix)
		})
	}
}

func TestReconstructSplitIDAT(t *testing.T) {
	src := imageutil.CreateGradientImage(16, 4)
	compressed := deflate(t, filterRows(samples(src, true), 4, FilterSub))
	third := len(compressed) / 3

	buf := buildPNG(
		ihdrChunk(16, 4, 8, TruecolorWithAlpha, 0),
		testChunk{typ: chunkIDAT, data: compressed[:third]},
		testChunk{typ: "tEXt", data: []byte("between\x00idats")},
		testChunk{typ: chunkIDAT, data: compressed[third : 2*third]},
		testChunk{typ: chunkIDAT, data: compressed[2*third:]},
		iendChunk(),
	)
	img, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, img.Pix)
}

// Images written by image/png use adaptive per-row filters.
func TestReconstructMatchesImagePNG(t *testing.T) {
	for _, withAlpha := range []bool{false, true} {
		src := imageutil.CreateNoiseImage(33, 17, 7, withAlpha)
		nrgba := image.NewNRGBA(src.Bounds())
		for y := 0; y < src.Height; y++ {
			for x := 0; x < src.Width; x++ {
				nrgba.SetNRGBA(x, y, src.PixelAt(x, y).ToColor())
			}
		}

		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, nrgba))

		img, err := Decode(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, src.Pix, img.Pix)
	}
}

func TestReconstructInvalidFilter(t *testing.T) {
	raw := []byte{0, 1, 2, 3, 5, 1, 2, 3}
	buf := buildPNG(ihdrChunk(1, 2, 8, Truecolor, 0), idatChunk(t, raw), iendChunk())

	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.Contains(t, err.Error(), "row 1")
}

func TestReconstructShortStream(t *testing.T) {
	buf := buildPNG(ihdrChunk(2, 2, 8, Truecolor, 0), idatChunk(t, make([]byte, 7)), iendChunk())

	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrDecompression)
}

func TestReconstructCorruptStream(t *testing.T) {
	tests := map[string][]byte{
		"not zlib":     {0x01, 0x02, 0x03},
		"no idat data": nil,
	}
	valid := deflate(t, make([]byte, 14))
	damaged := append([]byte{}, valid...)
	damaged[len(damaged)-1] ^= 0xFF
	tests["bad checksum"] = damaged

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			buf := buildPNG(ihdrChunk(2, 2, 8, Truecolor, 0), testChunk{typ: chunkIDAT, data: data}, iendChunk())
			_, err := Decode(buf)
			assert.ErrorIs(t, err, ErrDecompression)
		})
	}
}

func TestReconstructRejectsOversizedHeader(t *testing.T) {
	hdr := ImageHeader{Width: 1 << 20, Height: 1 << 20, BitDepth: 8, ColorType: TruecolorWithAlpha}
	_, err := Reconstruct(nil, hdr)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

package asciipng

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/asciipng/imageutil"
)

type testChunk struct {
	typ  string
	data []byte
}

// buildPNG frames chunks behind the PNG signature with valid CRCs.
func buildPNG(chunks ...testChunk) []byte {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	for _, c := range chunks {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(c.data)))
		buf.Write(n[:])
		buf.WriteString(c.typ)
		buf.Write(c.data)
		crc := crc32.NewIEEE()
		crc.Write([]byte(c.typ))
		crc.Write(c.data)
		binary.BigEndian.PutUint32(n[:], crc.Sum32())
		buf.Write(n[:])
	}
	return buf.Bytes()
}

func ihdrChunk(width, height uint32, bitDepth uint8, ct ColorType, interlace uint8) testChunk {
	data := make([]byte, ihdrLength)
	binary.BigEndian.PutUint32(data[0:4], width)
	binary.BigEndian.PutUint32(data[4:8], height)
	data[8] = bitDepth
	data[9] = uint8(ct)
	data[12] = interlace
	return testChunk{typ: chunkIHDR, data: data}
}

func idatChunk(t *testing.T, raw []byte) testChunk {
	return testChunk{typ: chunkIDAT, data: deflate(t, raw)}
}

func iendChunk() testChunk {
	return testChunk{typ: chunkIEND}
}

func deflate(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// samples flattens a raster into scanline sample bytes without filter
// bytes; withAlpha selects 4 or 3 bytes per pixel.
func samples(img *imageutil.RasterImage, withAlpha bool) [][]byte {
	rows := make([][]byte, img.Height)
	for y := range rows {
		for _, p := range img.Row(y) {
			rows[y] = append(rows[y], p.R, p.G, p.B)
			if withAlpha {
				rows[y] = append(rows[y], p.A)
			}
		}
	}
	return rows
}

// filterRows applies the encoder side of each row's filter and prefixes
// the filter byte, producing the bytes a PNG encoder would deflate.
func filterRows(rows [][]byte, bpp int, filters ...FilterType) []byte {
	var out []byte
	prev := make([]byte, len(rows[0]))
	for y, row := range rows {
		ft := filters[y%len(filters)]
		out = append(out, byte(ft))
		for i := range row {
			var left, up, upperLeft int
			up = int(prev[i])
			if i >= bpp {
				left = int(row[i-bpp])
				upperLeft = int(prev[i-bpp])
			}
			var predicted int
			switch ft {
			case FilterSub:
				predicted = left
			case FilterUp:
				predicted = up
			case FilterAverage:
				predicted = (left + up) / 2
			case FilterPaeth:
				predicted = paeth(left, up, upperLeft)
			}
			out = append(out, row[i]-uint8(predicted))
		}
		prev = row
	}
	return out
}

// encodeRaster builds a complete PNG for img using the given filters in
// rotation, one per row.
func encodeRaster(t *testing.T, img *imageutil.RasterImage, withAlpha bool, filters ...FilterType) []byte {
	ct, bpp := Truecolor, 3
	if withAlpha {
		ct, bpp = TruecolorWithAlpha, 4
	}
	raw := filterRows(samples(img, withAlpha), bpp, filters...)
	return buildPNG(
		ihdrChunk(uint32(img.Width), uint32(img.Height), 8, ct, 0),
		idatChunk(t, raw),
		iendChunk(),
	)
}

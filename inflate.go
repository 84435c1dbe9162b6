package asciipng

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/wbrown/asciipng/oops"
)

// maxTrailingInflate bounds how much surplus decompressed data is drained
// after the scanlines so that a corrupt trailer or checksum is still
// reported without letting a hostile stream expand forever.
const maxTrailingInflate = 1 << 20

// inflate decompresses a zlib stream that must yield at least size bytes
// and returns exactly those bytes.
func inflate(compressed []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, oops.New(withCause(ErrDecompression, err), "bad zlib header")
	}
	defer zr.Close()

	out := make([]byte, size)
	n, err := io.ReadFull(zr, out)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, oops.New(ErrDecompression, "inflated %d bytes, scanlines need %d", n, size)
	case err != nil:
		return nil, oops.New(withCause(ErrDecompression, err), "inflate failed after %d bytes", n)
	}

	if _, err := io.Copy(io.Discard, io.LimitReader(zr, maxTrailingInflate)); err != nil {
		return nil, oops.New(withCause(ErrDecompression, err), "corrupt end of stream")
	}
	return out, nil
}

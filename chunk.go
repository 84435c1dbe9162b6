package asciipng

import (
	"bytes"
	"encoding/binary"

	"github.com/wbrown/asciipng/oops"
)

// pngSignature is the fixed 8-byte magic every PNG file starts with.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Chunk types the decoder acts on.
const (
	chunkIHDR = "IHDR"
	chunkIDAT = "IDAT"
	chunkIEND = "IEND"
)

// chunkOverhead is the length, type and CRC fields framing every payload.
const chunkOverhead = 12

// Chunk is one length-prefixed segment of a PNG file. Data aliases the
// buffer passed to ParseChunks.
type Chunk struct {
	Type   string
	Length uint32
	Data   []byte
	CRC    uint32
}

// Critical reports whether the decoder must understand the chunk to render
// the image, which PNG encodes as an upper case first letter.
func (c Chunk) Critical() bool {
	return len(c.Type) > 0 && c.Type[0] >= 'A' && c.Type[0] <= 'Z'
}

// IsPNG reports whether data starts with the PNG signature.
func IsPNG(data []byte) bool {
	return len(data) >= len(pngSignature) && bytes.Equal(data[:len(pngSignature)], pngSignature)
}

// ParseChunks validates the signature and splits the rest of buf into
// chunks, in file order, until the buffer is exhausted. CRCs are recorded
// but not verified.
func ParseChunks(buf []byte) ([]Chunk, error) {
	if !IsPNG(buf) {
		return nil, oops.New(ErrInvalidSignature, "bad magic bytes")
	}

	cr := chunkReader{data: buf, idx: len(pngSignature)}
	var chunks []Chunk
	for !cr.done() {
		chunk, err := cr.next()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// chunkReader walks a PNG buffer one chunk at a time.
type chunkReader struct {
	data []byte
	idx  int
}

func (cr *chunkReader) done() bool {
	return cr.idx >= len(cr.data)
}

func (cr *chunkReader) next() (Chunk, error) {
	start := cr.idx

	header, ok := cr.advance(8)
	if !ok {
		return Chunk{}, oops.New(ErrTruncatedChunk, "chunk header at offset %d needs 8 bytes, %d left", start, len(cr.data)-start)
	}
	length := binary.BigEndian.Uint32(header[:4])
	typ := string(header[4:8])

	// Compare in uint64 so a huge declared length cannot wrap the cursor.
	if uint64(length)+4 > uint64(len(cr.data)-cr.idx) {
		return Chunk{}, oops.New(ErrTruncatedChunk, "%s chunk at offset %d declares %d bytes, %d left", typ, start, length, len(cr.data)-cr.idx)
	}
	payload, _ := cr.advance(int(length))
	crc, _ := cr.advance(4)

	return Chunk{
		Type:   typ,
		Length: length,
		Data:   payload,
		CRC:    binary.BigEndian.Uint32(crc),
	}, nil
}

// advance returns the next n bytes and moves the cursor past them.
func (cr *chunkReader) advance(n int) ([]byte, bool) {
	if n > len(cr.data)-cr.idx {
		return nil, false
	}
	cr.idx += n
	return cr.data[cr.idx-n : cr.idx], true
}

// chunksOfType returns every chunk with the given type, in file order.
func chunksOfType(chunks []Chunk, typ string) []Chunk {
	var found []Chunk
	for _, c := range chunks {
		if c.Type == typ {
			found = append(found, c)
		}
	}
	return found
}

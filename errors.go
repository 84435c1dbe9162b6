package asciipng

import "errors"

// Error kinds returned by the pipeline. Every error produced by this package
// wraps exactly one of these, so callers classify failures with errors.Is.
var (
	ErrInvalidSignature      = errors.New("invalid PNG signature")
	ErrTruncatedChunk        = errors.New("truncated chunk")
	ErrMissingIHDR           = errors.New("IHDR chunk not found")
	ErrInterlacedUnsupported = errors.New("interlaced images not supported")
	ErrUnsupportedColorType  = errors.New("unsupported color type")
	ErrUnsupportedBitDepth   = errors.New("unsupported bit depth")
	ErrDecompression         = errors.New("failed to decompress image data")
	ErrInvalidFilter         = errors.New("invalid scanline filter")
	ErrInvalidGeometry       = errors.New("invalid image geometry")
	ErrInvalidRamp           = errors.New("invalid glyph ramp")
)

// errorKinds lists the kinds in a stable order for Kind.
var errorKinds = []error{
	ErrInvalidSignature,
	ErrTruncatedChunk,
	ErrMissingIHDR,
	ErrInterlacedUnsupported,
	ErrUnsupportedColorType,
	ErrUnsupportedBitDepth,
	ErrDecompression,
	ErrInvalidFilter,
	ErrInvalidGeometry,
	ErrInvalidRamp,
}

// Kind returns the error kind wrapped by err, or nil when err did not come
// from this package.
func Kind(err error) error {
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// causeError attaches a lower level cause, such as a zlib error, to an error
// kind. Both remain reachable through errors.Is and errors.As.
type causeError struct {
	kind  error
	cause error
}

func withCause(kind, cause error) error {
	return &causeError{kind: kind, cause: cause}
}

func (e *causeError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *causeError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

package sbv

import "errors"

// Decode errors. All failures are immediate and synchronous; the codec
// never returns a partially decoded value alongside an error.
var (
	// ErrMalformedVarint reports a buffer that ends before a varint's
	// terminating byte (one with the continuation bit clear).
	ErrMalformedVarint = errors.New("sbv: malformed varint")

	// ErrTruncatedString reports a declared string length that exceeds
	// the remaining buffer.
	ErrTruncatedString = errors.New("sbv: truncated string")

	// ErrInvalidStringRef reports a pool index with no corresponding
	// pool entry. Decoding against a Session that does not share the
	// encoder's pool history fails with this error.
	ErrInvalidStringRef = errors.New("sbv: invalid string ref")

	// ErrUnknownTag reports a tag byte that is not valid at the current
	// position, such as a run-length unit outside an array.
	ErrUnknownTag = errors.New("sbv: unknown tag")
)

// Encode errors.
var (
	// ErrUnsupportedType reports a value whose kind cannot be encoded.
	ErrUnsupportedType = errors.New("sbv: unsupported type")
)

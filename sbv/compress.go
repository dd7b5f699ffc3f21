package sbv

import (
	"runtime"

	"github.com/klauspost/compress/zstd"
)

// Helpers for callers that persist or ship encoded payloads. Compression
// sits entirely outside the wire format: Decompress recovers exactly the
// bytes Encode produced, and those bytes still carry the pool-coupling
// contract.

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	e, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdEncoder = e
	d, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdDecoder = d
}

// Compress appends the zstd-compressed form of src to dst.
func Compress(src, dst []byte) []byte {
	return zstdEncoder.EncodeAll(src, dst)
}

// Decompress returns the decompressed form of src.
func Decompress(src []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(src, nil)
}

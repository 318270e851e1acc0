package grepdex

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// compressChunk compresses a chunk body with LZ4 in high-compression
// mode and reports whether the output is actually compressed. When LZ4
// cannot shrink the body the original buffer is returned unchanged with
// raw=true; the chunk header then records equal compressed and
// uncompressed sizes, which is how readers detect raw storage.
//
// The scratch buffer is sized to the codec's documented worst-case bound
// for len(data) bytes. A result outside [0, bound] is a codec contract
// breach, not an input problem, and panics.
func compressChunk(data []byte) (out []byte, raw bool) {
	bound := lz4.CompressBlockBound(len(data))
	compressed := make([]byte, bound)

	var codec lz4.CompressorHC
	codec.Level = lz4.Level9

	n, err := codec.CompressBlock(data, compressed)
	if err != nil || n < 0 || n > bound {
		panic(fmt.Sprintf("grepdex: lz4 codec contract breach: size %d, bound %d, err %v", n, bound, err))
	}

	// n == 0 means incompressible; storing the compressed form is also
	// pointless when it would not be smaller than the input.
	if n == 0 || n >= len(data) {
		return data, true
	}
	return compressed[:n], false
}

// decompressChunk reverses compressChunk given the sizes recorded in the
// chunk header. Equal sizes mean the body was stored raw.
func decompressChunk(compressed []byte, uncompressedSize int) ([]byte, error) {
	if len(compressed) == uncompressedSize {
		return compressed, nil
	}

	body := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(compressed, body)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
	}
	if n != uncompressedSize {
		return nil, fmt.Errorf("%w: lz4 produced %d bytes, header says %d", ErrCorrupt, n, uncompressedSize)
	}
	return body, nil
}

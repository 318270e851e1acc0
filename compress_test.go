package grepdex

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grepdex/grepdex/internal/testutil"
)

func TestCompressChunkRoundTrip(t *testing.T) {
	t.Parallel()

	data := testutil.Repeat("the quick brown fox jumps over the lazy dog\n", 64<<10)

	out, raw := compressChunk(data)
	require.False(t, raw, "repetitive text must compress")
	assert.Less(t, len(out), len(data))
	assert.LessOrEqual(t, len(out), lz4.CompressBlockBound(len(data)))

	back, err := decompressChunk(out, len(data))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, back))
}

func TestCompressChunkIncompressible(t *testing.T) {
	t.Parallel()

	data := make([]byte, 4096)
	rand.New(rand.NewSource(42)).Read(data)

	out, raw := compressChunk(data)
	require.True(t, raw, "random bytes must fall back to raw storage")
	assert.True(t, bytes.Equal(data, out))

	// Raw storage round-trips through the equal-sizes convention.
	back, err := decompressChunk(out, len(data))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, back))
}

func TestCompressChunkSmallInputs(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("x"), []byte("ababababab")} {
		out, _ := compressChunk(data)
		assert.LessOrEqual(t, len(out), lz4.CompressBlockBound(len(data)))

		back, err := decompressChunk(out, len(data))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(data, back))
	}
}

func TestDecompressChunkGarbage(t *testing.T) {
	t.Parallel()

	// Sizes differ, so this must go through the LZ4 decoder and fail.
	_, err := decompressChunk([]byte{0xff, 0xff, 0xff}, 100)
	assert.ErrorIs(t, err, ErrCorrupt)
}

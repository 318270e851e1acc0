package grepdex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	in := ChunkHeader{
		FileCount:        3,
		UncompressedSize: 1 << 40,
		CompressedSize:   12345,
	}

	buf := encodeChunkHeader(in)
	out, err := decodeChunkHeader(buf[:])
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestChunkHeaderWrongSize(t *testing.T) {
	t.Parallel()

	_, err := decodeChunkHeader(make([]byte, chunkHeaderSize-1))
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestEntryHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	in := entryHeader{
		nameOffset: 80,
		nameLength: 11,
		dataOffset: 91,
		dataSize:   1 << 33,
		fileSize:   1 << 33,
		timeStamp:  1_700_000_000,
	}

	buf := make([]byte, entryHeaderSize)
	putEntryHeader(buf, in)
	assert.Equal(t, in, getEntryHeader(buf))
}

func TestFormatConstants(t *testing.T) {
	t.Parallel()

	// Protocol constants: changing these breaks every existing archive.
	assert.Equal(t, 8, magicSize)
	assert.Equal(t, 20, chunkHeaderSize)
	assert.Equal(t, 40, entryHeaderSize)
	assert.Equal(t, "grepdex1", string(fileMagic[:]))
}

package grepdex

import (
	"encoding/binary"
	"fmt"
)

// Container magic. Readers check these bytes before anything else.
// Changing them breaks archive compatibility.
var fileMagic = [8]byte{'g', 'r', 'e', 'p', 'd', 'e', 'x', '1'}

const (
	// magicSize is the fixed container header length.
	magicSize = len(fileMagic)

	// chunkHeaderSize is the encoded size of a ChunkHeader:
	// fileCount u32 + uncompressedSize u64 + compressedSize u64.
	chunkHeaderSize = 4 + 8 + 8

	// entryHeaderSize is the encoded size of one entry header:
	// nameOffset u32 + nameLength u32 + dataOffset u64 + dataSize u64 +
	// fileSize u64 + timeStamp u64.
	entryHeaderSize = 4 + 4 + 8 + 8 + 8 + 8
)

// ChunkHeader precedes each compressed chunk body in the archive. It
// carries enough information for a reader to skip or decompress the
// chunk without a separate index.
type ChunkHeader struct {
	// FileCount is the number of entries in the chunk.
	FileCount uint32

	// UncompressedSize is the size of the chunk body before compression.
	UncompressedSize uint64

	// CompressedSize is the number of bytes following the header. Equal
	// to UncompressedSize when the body is stored raw.
	CompressedSize uint64
}

// encodeChunkHeader packs h into a fixed-size little-endian record.
func encodeChunkHeader(h ChunkHeader) [chunkHeaderSize]byte {
	var buf [chunkHeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.FileCount)
	binary.LittleEndian.PutUint64(buf[4:12], h.UncompressedSize)
	binary.LittleEndian.PutUint64(buf[12:20], h.CompressedSize)
	return buf
}

// decodeChunkHeader unpacks a chunk header record. The input must be
// exactly chunkHeaderSize bytes.
func decodeChunkHeader(buf []byte) (ChunkHeader, error) {
	if len(buf) != chunkHeaderSize {
		return ChunkHeader{}, fmt.Errorf("%w: chunk header is %d bytes, want %d", ErrCorrupt, len(buf), chunkHeaderSize)
	}
	return ChunkHeader{
		FileCount:        binary.LittleEndian.Uint32(buf[0:4]),
		UncompressedSize: binary.LittleEndian.Uint64(buf[4:12]),
		CompressedSize:   binary.LittleEndian.Uint64(buf[12:20]),
	}, nil
}

// entryHeader is the per-file record at the front of a decompressed
// chunk body. All offsets are relative to the start of the body.
type entryHeader struct {
	nameOffset uint32
	nameLength uint32
	dataOffset uint64
	dataSize   uint64
	fileSize   uint64
	timeStamp  uint64
}

// putEntryHeader packs e into buf, which must hold entryHeaderSize bytes.
func putEntryHeader(buf []byte, e entryHeader) {
	_ = buf[entryHeaderSize-1]
	binary.LittleEndian.PutUint32(buf[0:4], e.nameOffset)
	binary.LittleEndian.PutUint32(buf[4:8], e.nameLength)
	binary.LittleEndian.PutUint64(buf[8:16], e.dataOffset)
	binary.LittleEndian.PutUint64(buf[16:24], e.dataSize)
	binary.LittleEndian.PutUint64(buf[24:32], e.fileSize)
	binary.LittleEndian.PutUint64(buf[32:40], e.timeStamp)
}

// getEntryHeader unpacks the entry header at the front of buf.
func getEntryHeader(buf []byte) entryHeader {
	_ = buf[entryHeaderSize-1]
	return entryHeader{
		nameOffset: binary.LittleEndian.Uint32(buf[0:4]),
		nameLength: binary.LittleEndian.Uint32(buf[4:8]),
		dataOffset: binary.LittleEndian.Uint64(buf[8:16]),
		dataSize:   binary.LittleEndian.Uint64(buf[16:24]),
		fileSize:   binary.LittleEndian.Uint64(buf[24:32]),
		timeStamp:  binary.LittleEndian.Uint64(buf[32:40]),
	}
}

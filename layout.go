package grepdex

import "fmt"

// encodeChunkBody lays out files as one contiguous buffer:
//
//	[entry header table][name bytes][content bytes]
//
// Entry i of the header table always describes files[i]; insertion order
// is preserved. The transform is pure and deterministic: no I/O, no
// state outside the returned buffer.
//
// The final name cursor must land exactly at the end of the name region
// and the final data cursor exactly at the end of the buffer. A mismatch
// means the encoder itself is broken, so it panics rather than emitting
// a corrupt chunk.
func encodeChunkBody(files []FileRecord) []byte {
	headerSize := entryHeaderSize * len(files)

	nameSize := 0
	dataSize := 0
	for i := range files {
		nameSize += len(files[i].Name)
		dataSize += len(files[i].Contents)
	}

	body := make([]byte, headerSize+nameSize+dataSize)

	nameOffset := headerSize
	dataOffset := headerSize + nameSize

	for i := range files {
		f := &files[i]

		copy(body[nameOffset:], f.Name)
		copy(body[dataOffset:], f.Contents)

		putEntryHeader(body[i*entryHeaderSize:], entryHeader{
			nameOffset: uint32(nameOffset),
			nameLength: uint32(len(f.Name)),
			dataOffset: uint64(dataOffset),
			dataSize:   uint64(len(f.Contents)),
			fileSize:   f.FileSize,
			timeStamp:  f.TimeStamp,
		})

		nameOffset += len(f.Name)
		dataOffset += len(f.Contents)
	}

	if nameOffset != headerSize+nameSize || dataOffset != len(body) {
		panic(fmt.Sprintf("grepdex: chunk layout cursor mismatch: names %d/%d, data %d/%d",
			nameOffset, headerSize+nameSize, dataOffset, len(body)))
	}

	return body
}

// decodeChunkBody is the inverse of encodeChunkBody. It unpacks a
// decompressed chunk body into file records, validating every offset
// against the body bounds. Name and content slices are copied out of
// body, so the caller may reuse the buffer.
func decodeChunkBody(body []byte, fileCount int) ([]FileRecord, error) {
	if fileCount < 0 {
		return nil, fmt.Errorf("%w: negative file count", ErrCorrupt)
	}
	headerSize := entryHeaderSize * fileCount
	if headerSize > len(body) {
		return nil, fmt.Errorf("%w: header table (%d entries) exceeds body size %d", ErrCorrupt, fileCount, len(body))
	}

	files := make([]FileRecord, 0, fileCount)
	bodySize := uint64(len(body))

	for i := 0; i < fileCount; i++ {
		e := getEntryHeader(body[i*entryHeaderSize:])

		nameEnd := uint64(e.nameOffset) + uint64(e.nameLength)
		if uint64(e.nameOffset) < uint64(headerSize) || nameEnd > bodySize {
			return nil, fmt.Errorf("%w: entry %d name range [%d,%d) out of bounds", ErrCorrupt, i, e.nameOffset, nameEnd)
		}
		dataEnd := e.dataOffset + e.dataSize
		if dataEnd < e.dataOffset || e.dataOffset < uint64(headerSize) || dataEnd > bodySize {
			return nil, fmt.Errorf("%w: entry %d data range [%d,%d) out of bounds", ErrCorrupt, i, e.dataOffset, dataEnd)
		}

		contents := make([]byte, e.dataSize)
		copy(contents, body[e.dataOffset:dataEnd])

		files = append(files, FileRecord{
			Name:      string(body[e.nameOffset:nameEnd]),
			Contents:  contents,
			FileSize:  e.fileSize,
			TimeStamp: e.timeStamp,
		})
	}

	return files, nil
}

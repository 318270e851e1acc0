// Package grepdex builds the chunked, compressed archive consumed by the
// grepdex search tool.
//
// An archive groups input files into size-bounded chunks and compresses
// each chunk as one atomic unit with LZ4 in high-compression mode. The
// on-disk layout is self-describing:
//
//	[8-byte magic "grepdex1"]
//	repeated until EOF:
//	  [ChunkHeader: fileCount u32, uncompressedSize u64, compressedSize u64]
//	  [compressedSize bytes of LZ4 block output]
//
// Decompressing a chunk yields a body with three contiguous regions: a
// table of fixed-size entry headers (one per file, in append order), the
// concatenated file names, and the concatenated file contents. Every
// offset in an entry header is relative to the start of the decompressed
// body, so a chunk can be decoded without any state outside its own
// record. A chunk whose compressed size equals its uncompressed size is
// stored raw; this happens when LZ4 cannot shrink the body.
//
// All integers are little-endian. Chunks support whole-chunk
// decompression only; the format is not a random-access store.
//
// Archives are normally produced from a project description file via
// BuildProject, which selects input files through include/exclude rules,
// streams them through a Builder, and atomically publishes the result.
package grepdex

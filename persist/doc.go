// Package persist stores the selected preset and knob positions across
// power cycles.
//
// A Record is encoded with a codec, optionally compressed, and framed with a
// small header carrying a magic number, format version, codec id, compression
// type and a CRC32-C checksum:
//
//	[magic "FXST"][version u8][codec u8][compression u8][reserved u8][length u32][crc32c u32][payload...]
//
// Store reads and writes records through a blobstore.Store. Persister runs in
// the slow context and writes at most once per interval, coalescing bursts of
// preset switches to the latest confirmed one.
package persist

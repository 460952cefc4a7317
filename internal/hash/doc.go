// Package hash provides the CRC32-Castagnoli checksum used to validate
// persisted device state.
//
// CRC32C detects all single-bit, double-bit and odd-bit errors plus burst
// errors up to 32 bits, which covers the failure modes of a torn or worn flash
// write. Go's hash/crc32 uses the CRC instructions on x86 (SSE4.2) and ARM64
// when they are available.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(header)
//	h.Write(payload)
//	checksum := h.Sum32()
package hash

// Package buf contains helpers for endian-safe encoding and decoding of
// registry value payloads.
package buf

import "encoding/binary"

// U16LE reads a little-endian uint16 from b. Returns 0 when b is too short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// LE32 returns v as 4 little-endian bytes (the REG_DWORD layout).
func LE32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, 4), v)
}

// LE64 returns v as 8 little-endian bytes (the REG_QWORD layout).
func LE64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, 8), v)
}

// Package values decodes and encodes the typed payloads held by store
// nodes.
//
// A payload travels through the store as a type tag (types.RegType) plus a
// raw byte buffer. Decode turns that pair into one of a closed set of
// variants:
//
//	Binary       REG_BINARY                opaque bytes, copied
//	DWord        REG_DWORD                 4-byte little-endian unsigned
//	QWord        REG_QWORD                 8-byte little-endian unsigned
//	String       REG_SZ, REG_EXPAND_SZ     NUL-terminated UTF-16LE
//	MultiString  REG_MULTI_SZ              NUL-separated UTF-16LE list
//
// Any other tag, or a buffer too short for its tag, is undecodable and
// Decode reports ok == false. Callers treat that the same as an absent
// value.
//
// String decoding never fails: unpaired surrogates are replaced with
// U+FFFD and an odd trailing byte is ignored. Empty segments inside a
// multi-string are dropped, so the bytes for "hello", NUL, NUL, "world",
// NUL, NUL decode to ["hello", "world"].
//
// Encode is the inverse used by the write path. It always emits the
// canonical layout (terminating NULs included), so Decode(Encode(v))
// returns v for every value whose strings contain no NUL characters.
package values

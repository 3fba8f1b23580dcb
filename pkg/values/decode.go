package values

import (
	"strings"
	"unicode/utf8"

	"github.com/joshuapare/pkgdep/internal/buf"
	"github.com/joshuapare/pkgdep/pkg/types"
)

const (
	dwordSize = 4
	qwordSize = 8

	// utf16ASCIIThreshold is the first code unit that needs the slow path.
	utf16ASCIIThreshold = 0x80

	surrogateHighStart = 0xD800
	surrogateHighEnd   = 0xDBFF
	surrogateLowStart  = 0xDC00
	surrogateLowEnd    = 0xDFFF
	surrogateBase      = 0x10000
)

// Decode interprets data according to typ. ok is false when the tag is
// not one of the supported kinds or the buffer is too short for it.
// Decoded values never alias data.
func Decode(data []byte, typ types.RegType) (Value, bool) {
	switch typ {
	case types.REG_BINARY:
		out := make([]byte, len(data))
		copy(out, data)
		return Binary(out), true
	case types.REG_DWORD:
		if len(data) < dwordSize {
			return nil, false
		}
		return DWord(buf.U32LE(data)), true
	case types.REG_QWORD:
		if len(data) < qwordSize {
			return nil, false
		}
		return QWord(buf.U64LE(data)), true
	case types.REG_SZ:
		return String(DecodeString(data)), true
	case types.REG_EXPAND_SZ:
		return ExpandString(DecodeString(data)), true
	case types.REG_MULTI_SZ:
		return MultiString(DecodeMultiString(data)), true
	default:
		return nil, false
	}
}

// DecodeString decodes a NUL-terminated UTF-16LE buffer. Decoding stops at
// the first NUL code unit; a buffer without one is decoded in full.
func DecodeString(data []byte) string {
	end := len(data) &^ 1
	for i := 0; i < end; i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			end = i
			break
		}
	}
	return decodeUTF16LE(data[:end])
}

// DecodeMultiString decodes a REG_MULTI_SZ buffer into its non-empty
// segments, in order.
func DecodeMultiString(data []byte) []string {
	data = data[:len(data)&^1]
	result := []string{}
	start := 0
	for i := 0; i <= len(data); i += 2 {
		if i < len(data) && (data[i] != 0 || data[i+1] != 0) {
			continue
		}
		if i > start {
			result = append(result, decodeUTF16LE(data[start:i]))
		}
		start = i + 2
	}
	return result
}

// decodeUTF16LE decodes UTF-16LE bytes (even length, no terminator) to
// UTF-8. Unpaired surrogates become utf8.RuneError.
func decodeUTF16LE(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	// Fast path: registry names and versions are almost always ASCII.
	allASCII := true
	for i := 0; i < len(data); i += 2 {
		if data[i+1] != 0 || data[i] >= utf16ASCIIThreshold {
			allASCII = false
			break
		}
	}
	if allASCII {
		var b strings.Builder
		b.Grow(len(data) / 2)
		for i := 0; i < len(data); i += 2 {
			b.WriteByte(data[i])
		}
		return b.String()
	}

	var b strings.Builder
	b.Grow(len(data))
	for i := 0; i+1 < len(data); i += 2 {
		r := rune(buf.U16LE(data[i:]))

		if r >= surrogateHighStart && r <= surrogateHighEnd && i+3 < len(data) {
			r2 := rune(buf.U16LE(data[i+2:]))
			if r2 >= surrogateLowStart && r2 <= surrogateLowEnd {
				r = surrogateBase + ((r-surrogateHighStart)<<10 | (r2 - surrogateLowStart))
				i += 2
			}
		}

		// WriteRune substitutes RuneError for lone surrogates.
		if r >= surrogateHighStart && r <= surrogateLowEnd {
			r = utf8.RuneError
		}
		b.WriteRune(r)
	}
	return b.String()
}

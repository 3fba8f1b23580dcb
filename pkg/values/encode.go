package values

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/pkgdep/internal/buf"
	"github.com/joshuapare/pkgdep/pkg/types"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Encode returns the tag and canonical payload for v.
func Encode(v Value) (types.RegType, []byte, error) {
	switch x := v.(type) {
	case Binary:
		out := make([]byte, len(x))
		copy(out, x)
		return types.REG_BINARY, out, nil
	case DWord:
		return types.REG_DWORD, buf.LE32(uint32(x)), nil
	case QWord:
		return types.REG_QWORD, buf.LE64(uint64(x)), nil
	case String:
		data, err := EncodeString(string(x))
		return types.REG_SZ, data, err
	case ExpandString:
		data, err := EncodeString(string(x))
		return types.REG_EXPAND_SZ, data, err
	case MultiString:
		data, err := EncodeMultiString(x)
		return types.REG_MULTI_SZ, data, err
	default:
		return 0, nil, fmt.Errorf("values: cannot encode %T", v)
	}
}

// EncodeString encodes s as UTF-16LE followed by a NUL code unit.
func EncodeString(s string) ([]byte, error) {
	out, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, types.FormatError("values: encode string", err)
	}
	return append(out, 0, 0), nil
}

// EncodeMultiString encodes each segment NUL-terminated, followed by the
// list terminator. Empty segments are skipped because they cannot be
// represented.
func EncodeMultiString(list []string) ([]byte, error) {
	var out []byte
	for _, s := range list {
		if s == "" {
			continue
		}
		seg, err := EncodeString(s)
		if err != nil {
			return nil, err
		}
		out = append(out, seg...)
	}
	return append(out, 0, 0), nil
}

package values

import (
	"fmt"
	"strings"

	"github.com/joshuapare/pkgdep/pkg/types"
)

// Value is one decoded store payload. The set of implementations is
// closed: Binary, DWord, QWord, String, ExpandString and MultiString.
type Value interface {
	// Type returns the tag the value is stored under.
	Type() types.RegType
	fmt.Stringer
	isValue()
}

// Binary is an opaque REG_BINARY payload.
type Binary []byte

// DWord is a REG_DWORD payload.
type DWord uint32

// QWord is a REG_QWORD payload.
type QWord uint64

// String is a REG_SZ payload.
type String string

// ExpandString is a REG_EXPAND_SZ payload. Environment references are left
// unexpanded.
type ExpandString string

// MultiString is a REG_MULTI_SZ payload.
type MultiString []string

func (Binary) Type() types.RegType       { return types.REG_BINARY }
func (DWord) Type() types.RegType        { return types.REG_DWORD }
func (QWord) Type() types.RegType        { return types.REG_QWORD }
func (String) Type() types.RegType       { return types.REG_SZ }
func (ExpandString) Type() types.RegType { return types.REG_EXPAND_SZ }
func (MultiString) Type() types.RegType  { return types.REG_MULTI_SZ }

func (Binary) isValue()       {}
func (DWord) isValue()        {}
func (QWord) isValue()        {}
func (String) isValue()       {}
func (ExpandString) isValue() {}
func (MultiString) isValue()  {}

func (v Binary) String() string       { return fmt.Sprintf("% x", []byte(v)) }
func (v DWord) String() string        { return fmt.Sprintf("%d", uint32(v)) }
func (v QWord) String() string        { return fmt.Sprintf("%d", uint64(v)) }
func (v String) String() string       { return string(v) }
func (v ExpandString) String() string { return string(v) }
func (v MultiString) String() string  { return strings.Join(v, ", ") }

// Text returns the content of a String or ExpandString value.
func Text(v Value) (string, bool) {
	switch s := v.(type) {
	case String:
		return string(s), true
	case ExpandString:
		return string(s), true
	default:
		return "", false
	}
}

// Uint returns the numeric content of a DWord or QWord value.
func Uint(v Value) (uint64, bool) {
	switch n := v.(type) {
	case DWord:
		return uint64(n), true
	case QWord:
		return uint64(n), true
	default:
		return 0, false
	}
}

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// RegType enumerates registry value types.
// (The numbers align with Windows definitions.)
type RegType uint32

const (
	REG_NONE                       RegType = 0
	REG_SZ                         RegType = 1
	REG_EXPAND_SZ                  RegType = 2
	REG_BINARY                     RegType = 3
	REG_DWORD                      RegType = 4
	REG_DWORD_LE                   RegType = 4 // alias for clarity
	REG_DWORD_BE                   RegType = 5
	REG_LINK                       RegType = 6
	REG_MULTI_SZ                   RegType = 7
	REG_RESOURCE_LIST              RegType = 8
	REG_FULL_RESOURCE_DESCRIPTOR   RegType = 9
	REG_RESOURCE_REQUIREMENTS_LIST RegType = 10
	REG_QWORD                      RegType = 11
)

// String implements the Stringer interface for RegType
func (t RegType) String() string {
	switch t {
	case REG_NONE:
		return "REG_NONE"
	case REG_SZ:
		return "REG_SZ"
	case REG_EXPAND_SZ:
		return "REG_EXPAND_SZ"
	case REG_BINARY:
		return "REG_BINARY"
	case REG_DWORD:
		return "REG_DWORD"
	case REG_DWORD_BE:
		return "REG_DWORD_BE"
	case REG_LINK:
		return "REG_LINK"
	case REG_MULTI_SZ:
		return "REG_MULTI_SZ"
	case REG_RESOURCE_LIST:
		return "REG_RESOURCE_LIST"
	case REG_FULL_RESOURCE_DESCRIPTOR:
		return "REG_FULL_RESOURCE_DESCRIPTOR"
	case REG_RESOURCE_REQUIREMENTS_LIST:
		return "REG_RESOURCE_REQUIREMENTS_LIST"
	case REG_QWORD:
		return "REG_QWORD"
	default:
		// Signed, so corrupt tags read back the way regedit shows them.
		return fmt.Sprintf("UNKNOWN_TYPE_%d", int32(t))
	}
}

// ParseRegType accepts the names produced by String (case-insensitive).
func ParseRegType(s string) (RegType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for t := REG_NONE; t <= REG_QWORD; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	if rest, ok := strings.CutPrefix(name, "UNKNOWN_TYPE_"); ok {
		if n, err := strconv.ParseInt(rest, 10, 32); err == nil {
			return RegType(uint32(int32(n))), nil
		}
	}
	return 0, FormatError(fmt.Sprintf("unknown value type %q", s), nil)
}

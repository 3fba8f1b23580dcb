// Package version implements the four-field provider version
// (major.minor.build.revision) stored in the dependency ledger.
package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/pkgdep/pkg/types"
)

// maxFields is the number of dot-separated fields a version may carry.
const maxFields = 4

// Version is a comparable version of four 16-bit fields. The zero value is
// 0.0.0.0. Versions are compared field by field in declaration order, so
// they are also ordered by their packed uint64 form.
type Version struct {
	Major    uint16
	Minor    uint16
	Build    uint16
	Revision uint16
}

// New returns the version major.minor.build.revision.
func New(major, minor, build, revision uint16) Version {
	return Version{Major: major, Minor: minor, Build: build, Revision: revision}
}

// FromUint64 unpacks a version from its 64-bit ordinal, most significant
// field first.
func FromUint64(v uint64) Version {
	return Version{
		Major:    uint16(v >> 48),
		Minor:    uint16(v >> 32),
		Build:    uint16(v >> 16),
		Revision: uint16(v),
	}
}

// Uint64 packs v into its 64-bit ordinal.
func (v Version) Uint64() uint64 {
	return uint64(v.Major)<<48 | uint64(v.Minor)<<32 | uint64(v.Build)<<16 | uint64(v.Revision)
}

// Parse reads a dotted version of one to four fields, with an optional
// leading "v" or "V". Missing trailing fields are zero. More than four
// fields, or a field that is not an unsigned 16-bit decimal, is an
// ErrKindFormat error.
func Parse(s string) (Version, error) {
	text := s
	if strings.HasPrefix(text, "v") || strings.HasPrefix(text, "V") {
		text = text[1:]
	}

	parts := strings.Split(text, ".")
	if len(parts) > maxFields {
		return Version{}, types.FormatError(fmt.Sprintf("version %q has more than %d fields", s, maxFields), nil)
	}

	var fields [maxFields]uint16
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return Version{}, types.FormatError(fmt.Sprintf("version %q: invalid field %q", s, part), err)
		}
		fields[i] = uint16(n)
	}
	return Version{Major: fields[0], Minor: fields[1], Build: fields[2], Revision: fields[3]}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the canonical four-field form, e.g. "1.2.0.0".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// Compare returns -1, 0 or +1 as v is less than, equal to or greater than o.
func (v Version) Compare(o Version) int {
	return cmp.Compare(v.Uint64(), o.Uint64())
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

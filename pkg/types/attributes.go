package types

import "strings"

// Attributes is a bitmask of flags that refine a dependency requirement.
// The zero value makes both version bounds exclusive.
type Attributes uint32

const (
	// AttrNone leaves both bounds exclusive.
	AttrNone Attributes = 0
	// AttrMinVersionInclusive accepts a version equal to the minimum bound.
	AttrMinVersionInclusive Attributes = 0x100
	// AttrMaxVersionInclusive accepts a version equal to the maximum bound.
	AttrMaxVersionInclusive Attributes = 0x200
)

// Has reports whether every bit of flag is set in a.
func (a Attributes) Has(flag Attributes) bool { return a&flag == flag }

// With returns a with flag set.
func (a Attributes) With(flag Attributes) Attributes { return a | flag }

// IsMinInclusive reports whether the minimum bound accepts equality.
func (a Attributes) IsMinInclusive() bool { return a.Has(AttrMinVersionInclusive) }

// IsMaxInclusive reports whether the maximum bound accepts equality.
func (a Attributes) IsMaxInclusive() bool { return a.Has(AttrMaxVersionInclusive) }

func (a Attributes) String() string {
	var parts []string
	if a.IsMinInclusive() {
		parts = append(parts, "MinVersionInclusive")
	}
	if a.IsMaxInclusive() {
		parts = append(parts, "MaxVersionInclusive")
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

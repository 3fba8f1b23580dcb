package deps

import (
	"strings"

	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/version"
)

// Provider is one registered component.
//
// Identity is the key compared case-insensitively: two records with keys
// that differ only in letter case are the same provider. Version is nil
// for bare records, which carry only the key.
type Provider struct {
	Key        string           `json:"key"`
	Name       string           `json:"name,omitempty"`
	Version    *version.Version `json:"version,omitempty"`
	ID         string           `json:"id,omitempty"`
	Attributes types.Attributes `json:"attributes,omitempty"`
}

// Bare returns a record holding only key.
func Bare(key string) Provider { return Provider{Key: key} }

// Identity is the normalized key used for equality and set membership.
func (p Provider) Identity() string { return Identity(p.Key) }

// Equal reports whether p and o name the same provider.
func (p Provider) Equal(o Provider) bool { return p.Identity() == o.Identity() }

// IsBare reports whether the record carries no metadata beyond its key.
func (p Provider) IsBare() bool {
	return p.Name == "" && p.Version == nil && p.ID == "" && p.Attributes == 0
}

// String renders "Name (Key)" when a display name is known, else the key.
func (p Provider) String() string {
	if p.Name == "" {
		return p.Key
	}
	return p.Name + " (" + p.Key + ")"
}

// Identity normalizes a provider key.
func Identity(key string) string { return strings.ToUpper(key) }

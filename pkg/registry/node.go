package registry

import (
	"errors"

	"github.com/joshuapare/pkgdep/pkg/types"
)

// Access is the mode a node is opened with.
type Access int

const (
	// AccessRead permits queries and enumeration.
	AccessRead Access = iota
	// AccessReadWrite additionally permits creating, setting and deleting.
	AccessReadWrite
)

func (a Access) String() string {
	if a == AccessReadWrite {
		return "read-write"
	}
	return "read"
}

// Backend signals. Node implementations return these (possibly wrapped);
// they never escape this package's Key API.
var (
	// ErrMoreData reports that a GetValue buffer was too small. The
	// accompanying n is the size required.
	ErrMoreData = errors.New("registry: more data is available")

	// ErrNoMoreItems reports an enumeration index past the last item.
	ErrNoMoreItems = errors.New("registry: no more items")
)

// NodeInfo is the cheap metadata used to size enumerations.
type NodeInfo struct {
	SubkeyCount int
	ValueCount  int
}

// Node is one open reference to a store node.
//
// Paths are relative and use types.PathSeparator; empty segments are
// ignored. Name comparisons are case-insensitive. A missing node or value
// is reported with an error matching types.ErrNotFound; other failures
// should be *types.Error values of kind ErrKindStore carrying the
// backend's native code.
type Node interface {
	// OpenChild opens an existing descendant.
	OpenChild(path string, access Access) (Node, error)

	// CreateChild opens a descendant, creating it and any missing
	// ancestors.
	CreateChild(path string, access Access) (Node, error)

	// Stat returns the current child and value counts.
	Stat() (NodeInfo, error)

	// SubkeyName returns the name of the child at index, or
	// ErrNoMoreItems.
	SubkeyName(index int) (string, error)

	// ValueName returns the name of the value at index, or
	// ErrNoMoreItems. The unnamed value has the empty name.
	ValueName(index int) (string, error)

	// GetValue copies the named value's payload into buf and returns its
	// length and type. When buf is too small it returns the required
	// length with ErrMoreData.
	GetValue(name string, buf []byte) (int, types.RegType, error)

	// SetValue creates or replaces a value.
	SetValue(name string, typ types.RegType, data []byte) error

	// DeleteSubkey removes an immediate child that has no children.
	DeleteSubkey(name string) error

	// DeleteValue removes a value.
	DeleteValue(name string) error

	// Close releases the reference.
	Close() error
}

// Backend hands out the predefined root node for each scope.
type Backend interface {
	Root(scope types.Scope) (Node, error)
}

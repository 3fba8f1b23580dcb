package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
)

// initialValueSize is the first buffer offered to GetValue. Provider
// records are small; anything larger costs one retry.
const initialValueSize = 256

// Key is a scoped handle on one open store node.
type Key struct {
	node   Node
	access Access
	name   string
}

// Open opens path below root for reading.
func Open(root Node, path string) (*Key, error) {
	return openKey(root, path, AccessRead)
}

// OpenWritable opens path below root for reading and writing.
func OpenWritable(root Node, path string) (*Key, error) {
	return openKey(root, path, AccessReadWrite)
}

// Create opens path below root for writing, creating missing nodes.
func Create(root Node, path string) (*Key, error) {
	if root == nil {
		return nil, types.ErrClosed
	}
	n, err := root.CreateChild(path, AccessReadWrite)
	if err != nil {
		return nil, wrapErr("create", path, err)
	}
	return &Key{node: n, access: AccessReadWrite, name: KeyName(path)}, nil
}

func openKey(root Node, path string, access Access) (*Key, error) {
	if root == nil {
		return nil, types.ErrClosed
	}
	n, err := root.OpenChild(path, access)
	if err != nil {
		return nil, wrapErr("open", path, err)
	}
	return &Key{node: n, access: access, name: KeyName(path)}, nil
}

// Name is the last segment of the path the key was opened with.
func (k *Key) Name() string { return k.name }

// Access is the mode the key was opened with.
func (k *Key) Access() Access { return k.access }

func (k *Key) String() string { return k.name }

// OpenSubkey opens a descendant with this key's access mode.
func (k *Key) OpenSubkey(path string) (*Key, error) {
	if k.node == nil {
		return nil, types.ErrClosed
	}
	return openKey(k.node, path, k.access)
}

// CreateSubkey opens a descendant for writing, creating missing nodes.
func (k *Key) CreateSubkey(path string) (*Key, error) {
	if k.node == nil {
		return nil, types.ErrClosed
	}
	return Create(k.node, path)
}

// Value reads and decodes the named value. The empty name selects the
// unnamed (default) value. ok is false when the value is missing, cannot
// be read, or has a type that does not decode.
func (k *Key) Value(name string) (values.Value, bool) {
	if k.node == nil {
		return nil, false
	}
	data, typ, err := k.readValue(name)
	if err != nil {
		return nil, false
	}
	return values.Decode(data, typ)
}

// RawValue reads the named value without decoding it.
func (k *Key) RawValue(name string) ([]byte, types.RegType, error) {
	if k.node == nil {
		return nil, 0, types.ErrClosed
	}
	data, typ, err := k.readValue(name)
	if err != nil {
		return nil, 0, wrapErr("read value", name, err)
	}
	return data, typ, nil
}

// readValue retries at most once: a value that grows again between the
// two reads is reported as a failure.
func (k *Key) readValue(name string) ([]byte, types.RegType, error) {
	buf := make([]byte, initialValueSize)
	n, typ, err := k.node.GetValue(name, buf)
	if errors.Is(err, ErrMoreData) {
		buf = make([]byte, n)
		n, typ, err = k.node.GetValue(name, buf)
	}
	if err != nil {
		return nil, 0, err
	}
	if n > len(buf) {
		n = len(buf)
	}
	return buf[:n], typ, nil
}

// SetValue encodes v and stores it under name.
func (k *Key) SetValue(name string, v values.Value) error {
	typ, data, err := values.Encode(v)
	if err != nil {
		return err
	}
	return k.SetRawValue(name, typ, data)
}

// SetRawValue stores an already encoded payload.
func (k *Key) SetRawValue(name string, typ types.RegType, data []byte) error {
	if k.node == nil {
		return types.ErrClosed
	}
	if err := k.node.SetValue(name, typ, data); err != nil {
		return wrapErr("set value", name, err)
	}
	return nil
}

// DeleteValue removes the named value.
func (k *Key) DeleteValue(name string) error {
	if k.node == nil {
		return types.ErrClosed
	}
	if err := k.node.DeleteValue(name); err != nil {
		return wrapErr("delete value", name, err)
	}
	return nil
}

// DeleteSubkey removes an immediate child. The child must have no
// children of its own.
func (k *Key) DeleteSubkey(name string) error {
	if k.node == nil {
		return types.ErrClosed
	}
	if err := childName(name); err != nil {
		return err
	}
	if err := k.node.DeleteSubkey(name); err != nil {
		return wrapErr("delete key", name, err)
	}
	return nil
}

// DeleteTree removes an immediate child and everything below it. name
// must be a single path segment.
func (k *Key) DeleteTree(name string) error {
	if err := childName(name); err != nil {
		return err
	}
	child, err := k.OpenSubkey(name)
	if err != nil {
		return err
	}
	var names []string
	it, err := child.Keys()
	if err == nil {
		for it.Next() {
			names = append(names, it.Name())
		}
		it.Close()
	}
	for _, n := range names {
		if err := child.DeleteTree(n); err != nil {
			child.Close()
			return err
		}
	}
	child.Close()
	return k.DeleteSubkey(name)
}

// childName rejects anything other than one non-empty path segment, so a
// delete can never reach the key itself or a grandchild.
func childName(name string) error {
	if name == "" || strings.Contains(name, types.PathSeparator) {
		return types.FormatError(fmt.Sprintf("%q is not a child key name", name), nil)
	}
	return nil
}

// Close releases the node. Only the first call has any effect.
func (k *Key) Close() error {
	if k == nil || k.node == nil {
		return nil
	}
	n := k.node
	k.node = nil
	return n.Close()
}

// wrapErr adds context to a backend error. Typed errors keep their kind;
// anything else becomes a store error.
func wrapErr(op, name string, err error) error {
	if _, ok := types.KindOf(err); ok {
		return fmt.Errorf("%s %q: %w", op, name, err)
	}
	return types.StoreError(fmt.Sprintf("%s %q", op, name), 0, err)
}

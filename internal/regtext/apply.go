package regtext

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/types"
)

// Stats counts what an import changed.
type Stats struct {
	KeysCreated   int
	KeysDeleted   int
	ValuesSet     int
	ValuesDeleted int
}

// Import parses a .reg document from r and applies it to b.
func Import(r io.Reader, b registry.Backend, opts ParseOptions) (Stats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Stats{}, fmt.Errorf("reading .reg input: %w", err)
	}
	ops, err := Parse(data, opts)
	if err != nil {
		return Stats{}, err
	}
	return Apply(b, ops)
}

// Apply runs ops against b in order. Deleting keys or values that do not
// exist is not an error, matching regedit.
func Apply(b registry.Backend, ops []Op) (Stats, error) {
	roots := map[types.Scope]registry.Node{}
	defer func() {
		for _, n := range roots {
			n.Close()
		}
	}()
	rootFor := func(scope types.Scope) (registry.Node, error) {
		if n, ok := roots[scope]; ok {
			return n, nil
		}
		n, err := b.Root(scope)
		if err != nil {
			return nil, err
		}
		roots[scope] = n
		return n, nil
	}

	var st Stats
	for _, op := range ops {
		scope, rel, err := SplitRoot(op.KeyPath())
		if err != nil {
			return st, err
		}
		root, err := rootFor(scope)
		if err != nil {
			return st, err
		}
		if err := applyOne(root, rel, op, &st); err != nil {
			return st, fmt.Errorf("regtext: %s: %w", op.KeyPath(), err)
		}
	}
	return st, nil
}

func applyOne(root registry.Node, rel string, op Op, st *Stats) error {
	switch o := op.(type) {
	case OpCreateKey:
		k, err := registry.Create(root, rel)
		if err != nil {
			return err
		}
		st.KeysCreated++
		return k.Close()

	case OpDeleteKey:
		if rel == "" {
			return &types.Error{Kind: types.ErrKindNotSupported, Msg: "cannot delete a root key"}
		}
		parentPath, name := rel, rel
		if i := strings.LastIndex(rel, Backslash); i >= 0 {
			parentPath, name = rel[:i], rel[i+1:]
		} else {
			parentPath = ""
		}
		parent, err := registry.OpenWritable(root, parentPath)
		if err != nil {
			return ignoreNotFound(err)
		}
		defer parent.Close()
		if err := parent.DeleteTree(name); err != nil {
			return ignoreNotFound(err)
		}
		st.KeysDeleted++
		return nil

	case OpSetValue:
		k, err := registry.Create(root, rel)
		if err != nil {
			return err
		}
		defer k.Close()
		if err := k.SetRawValue(o.Name, o.Type, o.Data); err != nil {
			return err
		}
		st.ValuesSet++
		return nil

	case OpDeleteValue:
		k, err := registry.OpenWritable(root, rel)
		if err != nil {
			return ignoreNotFound(err)
		}
		defer k.Close()
		if err := k.DeleteValue(o.Name); err != nil {
			return ignoreNotFound(err)
		}
		st.ValuesDeleted++
		return nil

	default:
		return fmt.Errorf("unknown op %T", op)
	}
}

func ignoreNotFound(err error) error {
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	return err
}

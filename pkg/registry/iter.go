package registry

import (
	"iter"

	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
)

// KeyIter walks the children of a key by index. Each child is opened with
// the parent's access mode; the child yielded by one call to Next is
// closed by the following call to Next or by Close.
type KeyIter struct {
	parent *Key
	count  int
	index  int
	cur    *Key
	done   bool
}

// Keys starts an enumeration of the key's children. Each child handle it
// produces, through Next or All, is closed when the enumeration advances or
// ends. To keep a child beyond that, take ownership with KeyIter.Take or
// reopen it with OpenSubkey(name).
func (k *Key) Keys() (*KeyIter, error) {
	if k.node == nil {
		return nil, types.ErrClosed
	}
	info, err := k.node.Stat()
	if err != nil {
		return nil, wrapErr("stat", k.name, err)
	}
	return &KeyIter{parent: k, count: info.SubkeyCount}, nil
}

// Len is the child count observed when the enumeration started.
func (it *KeyIter) Len() int { return it.count }

// Next advances to the next child. It returns false at the end of the
// sequence or as soon as a child cannot be named or opened.
func (it *KeyIter) Next() bool {
	it.release()
	if it.done || it.parent.node == nil {
		return false
	}
	name, err := it.parent.node.SubkeyName(it.index)
	if err != nil {
		it.done = true
		return false
	}
	it.index++
	child, err := it.parent.OpenSubkey(name)
	if err != nil {
		it.done = true
		return false
	}
	it.cur = child
	return true
}

// Key is the current child. It stays valid until the next call to Next or
// Close; callers that need it longer should use Take.
func (it *KeyIter) Key() *Key { return it.cur }

// Take hands the current child to the caller, who must close it. The
// iterator no longer releases it, and Key and Name report nothing until
// the next call to Next.
func (it *KeyIter) Take() *Key {
	k := it.cur
	it.cur = nil
	return k
}

// Name is the current child's name.
func (it *KeyIter) Name() string {
	if it.cur == nil {
		return ""
	}
	return it.cur.name
}

// Close ends the enumeration and releases the current child.
func (it *KeyIter) Close() {
	it.release()
	it.done = true
}

func (it *KeyIter) release() {
	if it.cur != nil {
		it.cur.Close()
		it.cur = nil
	}
}

// All adapts the iterator to a range-over-func sequence. The iterator is
// closed when the loop ends. Each yielded key is closed before the next one
// is produced, so the loop body must not retain it.
func (it *KeyIter) All() iter.Seq[*Key] {
	return func(yield func(*Key) bool) {
		defer it.Close()
		for it.Next() {
			if !yield(it.cur) {
				return
			}
		}
	}
}

// ValueIter walks the values of a key by index.
type ValueIter struct {
	key   *Key
	count int
	index int
	name  string
	val   values.Value
	done  bool
}

// Values starts an enumeration of the key's values.
func (k *Key) Values() (*ValueIter, error) {
	if k.node == nil {
		return nil, types.ErrClosed
	}
	info, err := k.node.Stat()
	if err != nil {
		return nil, wrapErr("stat", k.name, err)
	}
	return &ValueIter{key: k, count: info.ValueCount}, nil
}

// Len is the value count observed when the enumeration started.
func (it *ValueIter) Len() int { return it.count }

// Next advances to the next decodable value. Values whose type does not
// decode are skipped; a value that cannot be named or read ends the
// sequence.
func (it *ValueIter) Next() bool {
	for !it.done && it.key.node != nil {
		name, err := it.key.node.ValueName(it.index)
		if err != nil {
			break
		}
		it.index++
		data, typ, err := it.key.readValue(name)
		if err != nil {
			break
		}
		v, ok := values.Decode(data, typ)
		if !ok {
			continue
		}
		it.name, it.val = name, v
		return true
	}
	it.done = true
	it.name, it.val = "", nil
	return false
}

// Name is the current value's name.
func (it *ValueIter) Name() string { return it.name }

// Value is the current decoded value.
func (it *ValueIter) Value() values.Value { return it.val }

// All adapts the iterator to a range-over-func sequence of name/value
// pairs.
func (it *ValueIter) All() iter.Seq2[string, values.Value] {
	return func(yield func(string, values.Value) bool) {
		for it.Next() {
			if !yield(it.name, it.val) {
				return
			}
		}
	}
}

// ValueNames lists the key's value names in enumeration order, including
// values whose type does not decode.
func (k *Key) ValueNames() ([]string, error) {
	if k.node == nil {
		return nil, types.ErrClosed
	}
	info, err := k.node.Stat()
	if err != nil {
		return nil, wrapErr("stat", k.name, err)
	}
	names := make([]string, 0, info.ValueCount)
	for i := 0; ; i++ {
		name, err := k.node.ValueName(i)
		if err != nil {
			break
		}
		names = append(names, name)
	}
	return names, nil
}

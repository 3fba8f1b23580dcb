// Package memstore is an in-process registry.Backend.
//
// It keeps both scopes as trees in memory, preserves insertion order for
// enumeration, and follows the same conventions as the native store:
// case-insensitive names, ErrMoreData for short buffers, and a refusal to
// delete keys that still have children. A Store can be loaded from and
// saved to YAML, which makes it the default backend on platforms without
// a native registry.
package memstore

import (
	"strings"
	"sync"

	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/types"
)

// Win32 codes reported for the failures the native store would produce.
const (
	codeAccessDenied = 5
	codeKeyDeleted   = 1018
)

type value struct {
	name string
	typ  types.RegType
	data []byte
}

type node struct {
	name     string
	children []*node
	values   []*value
	deleted  bool
}

func (n *node) child(name string) (int, *node) {
	for i, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return i, c
		}
	}
	return -1, nil
}

func (n *node) value(name string) (int, *value) {
	for i, v := range n.values {
		if strings.EqualFold(v.name, name) {
			return i, v
		}
	}
	return -1, nil
}

// Store holds the machine and user trees.
type Store struct {
	mu    sync.RWMutex
	roots map[types.Scope]*node
	open  int
}

// New returns an empty store.
func New() *Store {
	return &Store{roots: map[types.Scope]*node{
		types.ScopeMachine: {name: "HKEY_LOCAL_MACHINE"},
		types.ScopeUser:    {name: "HKEY_CURRENT_USER"},
	}}
}

// Root returns a read-write handle on the scope's root.
func (s *Store) Root(scope types.Scope) (registry.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roots[scope]
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindNotSupported, Msg: "scope " + scope.String()}
	}
	s.open++
	return &handle{store: s, n: r, access: registry.AccessReadWrite}, nil
}

// OpenHandles reports how many handles are currently open.
func (s *Store) OpenHandles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

type handle struct {
	store  *Store
	n      *node
	access registry.Access
	closed bool
}

var _ registry.Node = (*handle)(nil)

func (h *handle) check(write bool) error {
	if h.closed {
		return types.ErrClosed
	}
	if h.n.deleted {
		return types.StoreError("key marked for deletion", codeKeyDeleted, nil)
	}
	if write && h.access != registry.AccessReadWrite {
		return types.StoreError("access denied", codeAccessDenied, nil)
	}
	return nil
}

func (h *handle) walk(path string, create bool) (*node, error) {
	cur := h.n
	for _, seg := range registry.SplitPath(path) {
		_, next := cur.child(seg)
		if next == nil {
			if !create {
				return nil, types.NotFound("key " + path)
			}
			next = &node{name: seg}
			cur.children = append(cur.children, next)
		}
		cur = next
	}
	return cur, nil
}

func (h *handle) OpenChild(path string, access registry.Access) (registry.Node, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if err := h.check(false); err != nil {
		return nil, err
	}
	n, err := h.walk(path, false)
	if err != nil {
		return nil, err
	}
	h.store.open++
	return &handle{store: h.store, n: n, access: access}, nil
}

func (h *handle) CreateChild(path string, access registry.Access) (registry.Node, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if err := h.check(true); err != nil {
		return nil, err
	}
	n, err := h.walk(path, true)
	if err != nil {
		return nil, err
	}
	h.store.open++
	return &handle{store: h.store, n: n, access: access}, nil
}

func (h *handle) Stat() (registry.NodeInfo, error) {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	if err := h.check(false); err != nil {
		return registry.NodeInfo{}, err
	}
	return registry.NodeInfo{SubkeyCount: len(h.n.children), ValueCount: len(h.n.values)}, nil
}

func (h *handle) SubkeyName(index int) (string, error) {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	if err := h.check(false); err != nil {
		return "", err
	}
	if index < 0 || index >= len(h.n.children) {
		return "", registry.ErrNoMoreItems
	}
	return h.n.children[index].name, nil
}

func (h *handle) ValueName(index int) (string, error) {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	if err := h.check(false); err != nil {
		return "", err
	}
	if index < 0 || index >= len(h.n.values) {
		return "", registry.ErrNoMoreItems
	}
	return h.n.values[index].name, nil
}

func (h *handle) GetValue(name string, buf []byte) (int, types.RegType, error) {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	if err := h.check(false); err != nil {
		return 0, 0, err
	}
	_, v := h.n.value(name)
	if v == nil {
		return 0, 0, types.NotFound("value " + name)
	}
	if len(buf) < len(v.data) {
		return len(v.data), v.typ, registry.ErrMoreData
	}
	return copy(buf, v.data), v.typ, nil
}

func (h *handle) SetValue(name string, typ types.RegType, data []byte) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if err := h.check(true); err != nil {
		return err
	}
	data = append([]byte(nil), data...)
	if _, v := h.n.value(name); v != nil {
		v.typ, v.data = typ, data
		return nil
	}
	h.n.values = append(h.n.values, &value{name: name, typ: typ, data: data})
	return nil
}

func (h *handle) DeleteSubkey(name string) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if err := h.check(true); err != nil {
		return err
	}
	i, c := h.n.child(name)
	if c == nil {
		return types.NotFound("key " + name)
	}
	if len(c.children) > 0 {
		return types.StoreError("key has subkeys", codeAccessDenied, nil)
	}
	c.deleted = true
	h.n.children = append(h.n.children[:i], h.n.children[i+1:]...)
	return nil
}

func (h *handle) DeleteValue(name string) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if err := h.check(true); err != nil {
		return err
	}
	i, v := h.n.value(name)
	if v == nil {
		return types.NotFound("value " + name)
	}
	h.n.values = append(h.n.values[:i], h.n.values[i+1:]...)
	return nil
}

func (h *handle) Close() error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if h.closed {
		return types.ErrClosed
	}
	h.closed = true
	h.store.open--
	return nil
}

//go:build windows

package winreg

import (
	"errors"
	"io"
	"syscall"

	winregistry "golang.org/x/sys/windows/registry"

	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
)

// Backend hands out HKEY_LOCAL_MACHINE and HKEY_CURRENT_USER.
type Backend struct{}

// New returns the native backend.
func New() Backend { return Backend{} }

// Root returns the predefined key for scope. Closing it is a no-op.
func (Backend) Root(scope types.Scope) (registry.Node, error) {
	switch scope {
	case types.ScopeMachine:
		return &handle{k: winregistry.LOCAL_MACHINE, access: registry.AccessReadWrite, predefined: true}, nil
	case types.ScopeUser:
		return &handle{k: winregistry.CURRENT_USER, access: registry.AccessReadWrite, predefined: true}, nil
	default:
		return nil, &types.Error{Kind: types.ErrKindNotSupported, Msg: "scope " + scope.String()}
	}
}

func mask(a registry.Access) uint32 {
	if a == registry.AccessReadWrite {
		return winregistry.READ | winregistry.WRITE
	}
	return winregistry.READ
}

// mapErr turns Win32 errors into typed errors carrying the error number.
func mapErr(op, name string, err error) error {
	if errors.Is(err, winregistry.ErrNotExist) {
		return types.NotFound(op + " " + name)
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return types.StoreError(op+" "+name, uint32(errno), err)
	}
	return types.StoreError(op+" "+name, 0, err)
}

type handle struct {
	k          winregistry.Key
	access     registry.Access
	predefined bool
	closed     bool
}

var _ registry.Node = (*handle)(nil)

func (h *handle) OpenChild(path string, access registry.Access) (registry.Node, error) {
	if h.closed {
		return nil, types.ErrClosed
	}
	k, err := winregistry.OpenKey(h.k, path, mask(access))
	if err != nil {
		return nil, mapErr("open key", path, err)
	}
	return &handle{k: k, access: access}, nil
}

func (h *handle) CreateChild(path string, access registry.Access) (registry.Node, error) {
	if h.closed {
		return nil, types.ErrClosed
	}
	k, _, err := winregistry.CreateKey(h.k, path, mask(access))
	if err != nil {
		return nil, mapErr("create key", path, err)
	}
	return &handle{k: k, access: access}, nil
}

func (h *handle) Stat() (registry.NodeInfo, error) {
	if h.closed {
		return registry.NodeInfo{}, types.ErrClosed
	}
	info, err := h.k.Stat()
	if err != nil {
		return registry.NodeInfo{}, mapErr("stat", "key", err)
	}
	return registry.NodeInfo{SubkeyCount: int(info.SubKeyCount), ValueCount: int(info.ValueCount)}, nil
}

// nameAt picks the index-th name from a list read fresh from the key.
func nameAt(index int, read func(int) ([]string, error)) (string, error) {
	if index < 0 {
		return "", registry.ErrNoMoreItems
	}
	names, err := read(index + 1)
	if index < len(names) {
		return names[index], nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, syscall.Errno(259)) {
		return "", registry.ErrNoMoreItems
	}
	return "", mapErr("enumerate", "key", err)
}

func (h *handle) SubkeyName(index int) (string, error) {
	if h.closed {
		return "", types.ErrClosed
	}
	return nameAt(index, h.k.ReadSubKeyNames)
}

func (h *handle) ValueName(index int) (string, error) {
	if h.closed {
		return "", types.ErrClosed
	}
	return nameAt(index, h.k.ReadValueNames)
}

func (h *handle) GetValue(name string, buf []byte) (int, types.RegType, error) {
	if h.closed {
		return 0, 0, types.ErrClosed
	}
	n, typ, err := h.k.GetValue(name, buf)
	if errors.Is(err, winregistry.ErrShortBuffer) {
		return n, types.RegType(typ), registry.ErrMoreData
	}
	if err != nil {
		return 0, 0, mapErr("query value", name, err)
	}
	return n, types.RegType(typ), nil
}

// SetValue goes through the typed setters, so only the decodable value
// types can be written.
func (h *handle) SetValue(name string, typ types.RegType, data []byte) error {
	if h.closed {
		return types.ErrClosed
	}
	v, ok := values.Decode(data, typ)
	if !ok {
		return &types.Error{Kind: types.ErrKindNotSupported, Msg: "cannot write " + typ.String() + " value " + name}
	}
	var err error
	switch x := v.(type) {
	case values.String:
		err = h.k.SetStringValue(name, string(x))
	case values.ExpandString:
		err = h.k.SetExpandStringValue(name, string(x))
	case values.MultiString:
		err = h.k.SetStringsValue(name, x)
	case values.DWord:
		err = h.k.SetDWordValue(name, uint32(x))
	case values.QWord:
		err = h.k.SetQWordValue(name, uint64(x))
	case values.Binary:
		err = h.k.SetBinaryValue(name, x)
	}
	if err != nil {
		return mapErr("set value", name, err)
	}
	return nil
}

func (h *handle) DeleteSubkey(name string) error {
	if h.closed {
		return types.ErrClosed
	}
	if err := winregistry.DeleteKey(h.k, name); err != nil {
		return mapErr("delete key", name, err)
	}
	return nil
}

func (h *handle) DeleteValue(name string) error {
	if h.closed {
		return types.ErrClosed
	}
	if err := h.k.DeleteValue(name); err != nil {
		return mapErr("delete value", name, err)
	}
	return nil
}

func (h *handle) Close() error {
	if h.closed {
		return types.ErrClosed
	}
	h.closed = true
	if h.predefined {
		return nil
	}
	return h.k.Close()
}

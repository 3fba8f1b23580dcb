package sqlstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStore_CreateAndReopen(t *testing.T) {
	s, path := openTemp(t)

	root, err := s.Root(types.ScopeMachine)
	require.NoError(t, err)
	k, err := registry.Create(root, `Software\Vendor\Product`)
	require.NoError(t, err)
	require.NoError(t, k.SetValue("DisplayName", values.String("Product")))
	require.NoError(t, k.SetValue("Attributes", values.DWord(0x100)))
	require.NoError(t, k.Close())
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	root2, _ := s2.Root(types.ScopeMachine)
	k2, err := registry.Open(root2, `SOFTWARE\vendor\PRODUCT`)
	require.NoError(t, err)
	defer k2.Close()

	v, ok := k2.Value("displayname")
	require.True(t, ok)
	assert.Equal(t, values.String("Product"), v)
	v, ok = k2.Value("Attributes")
	require.True(t, ok)
	assert.Equal(t, values.DWord(0x100), v)
}

func TestStore_ScopesAreSeparate(t *testing.T) {
	s, _ := openTemp(t)
	m, _ := s.Root(types.ScopeMachine)
	u, _ := s.Root(types.ScopeUser)

	k, err := registry.Create(m, "OnlyMachine")
	require.NoError(t, err)
	k.Close()

	_, err = registry.Open(u, "OnlyMachine")
	require.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.Root(types.Scope(42))
	require.ErrorIs(t, err, types.ErrNotSupported)
}

func TestStore_EnumerationOrder(t *testing.T) {
	s, _ := openTemp(t)
	root, _ := s.Root(types.ScopeMachine)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		k, err := registry.Create(root, `P\`+name)
		require.NoError(t, err)
		k.Close()
	}
	p, err := registry.Open(root, "P")
	require.NoError(t, err)
	defer p.Close()

	it, err := p.Keys()
	require.NoError(t, err)
	assert.Equal(t, 3, it.Len())
	var names []string
	for k := range it.All() {
		names = append(names, k.Name())
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestStore_ValueReplaceKeepsPosition(t *testing.T) {
	s, _ := openTemp(t)
	root, _ := s.Root(types.ScopeUser)
	k, _ := registry.Create(root, "K")
	defer k.Close()

	require.NoError(t, k.SetValue("a", values.DWord(1)))
	require.NoError(t, k.SetValue("b", values.DWord(2)))
	require.NoError(t, k.SetValue("A", values.QWord(3)))

	it, err := k.Values()
	require.NoError(t, err)
	var names []string
	var vals []values.Value
	for name, v := range it.All() {
		names = append(names, name)
		vals = append(vals, v)
	}
	assert.Equal(t, []string{"A", "b"}, names)
	assert.Equal(t, []values.Value{values.QWord(3), values.DWord(2)}, vals)
}

func TestStore_MoreData(t *testing.T) {
	s, _ := openTemp(t)
	root, _ := s.Root(types.ScopeMachine)
	require.NoError(t, root.SetValue("v", types.REG_BINARY, make([]byte, 300)))

	n, typ, err := root.GetValue("v", make([]byte, 10))
	require.ErrorIs(t, err, registry.ErrMoreData)
	assert.Equal(t, 300, n)
	assert.Equal(t, types.REG_BINARY, typ)
}

func TestStore_DeleteSubkey(t *testing.T) {
	s, _ := openTemp(t)
	root, _ := s.Root(types.ScopeMachine)
	c, _ := registry.Create(root, `A\B`)
	require.NoError(t, c.SetValue("x", values.DWord(1)))

	a, _ := registry.OpenWritable(root, "A")
	defer a.Close()

	err := root.DeleteSubkey("A")
	require.ErrorIs(t, err, types.ErrStore)

	require.NoError(t, a.DeleteSubkey("b"))
	_, ok := c.Value("x")
	assert.False(t, ok, "handles on deleted keys go stale")
	_, err = c.Keys()
	require.ErrorIs(t, err, types.ErrStore)
	c.Close()

	require.ErrorIs(t, a.DeleteSubkey("b"), types.ErrNotFound)
	require.ErrorIs(t, a.DeleteValue("nope"), types.ErrNotFound)
}

func TestStore_ReadOnlyRejectsWrites(t *testing.T) {
	s, _ := openTemp(t)
	root, _ := s.Root(types.ScopeMachine)
	k, _ := registry.Create(root, "K")
	k.Close()

	ro, err := registry.Open(root, "K")
	require.NoError(t, err)
	defer ro.Close()
	err = ro.SetValue("x", values.DWord(1))
	var te *types.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, types.ErrKindStore, te.Kind)
	assert.Equal(t, uint32(codeAccessDenied), te.Code)
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	root, _ := s.Root(types.ScopeMachine)
	k, err := registry.Create(root, "K")
	require.NoError(t, err)
	k.Close()
	k, err = registry.Open(root, "K")
	require.NoError(t, err)
	k.Close()
}

package memstore

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
)

func TestNode_CaseInsensitiveLookup(t *testing.T) {
	s := New()
	root, err := s.Root(types.ScopeMachine)
	require.NoError(t, err)
	defer root.Close()

	n, err := root.CreateChild(`Software\Vendor`, registry.AccessReadWrite)
	require.NoError(t, err)
	require.NoError(t, n.SetValue("Version", types.REG_DWORD, []byte{1, 0, 0, 0}))
	require.NoError(t, n.Close())

	n, err = root.OpenChild(`SOFTWARE\vendor`, registry.AccessRead)
	require.NoError(t, err)
	defer n.Close()

	buf := make([]byte, 4)
	size, typ, err := n.GetValue("VERSION", buf)
	require.NoError(t, err)
	assert.Equal(t, 4, size)
	assert.Equal(t, types.REG_DWORD, typ)
}

func TestNode_MoreData(t *testing.T) {
	s := New()
	root, _ := s.Root(types.ScopeUser)
	defer root.Close()

	require.NoError(t, root.SetValue("v", types.REG_BINARY, []byte{1, 2, 3, 4, 5}))

	size, _, err := root.GetValue("v", make([]byte, 2))
	require.ErrorIs(t, err, registry.ErrMoreData)
	assert.Equal(t, 5, size)
}

func TestNode_ScopesAreSeparate(t *testing.T) {
	s := New()
	m, _ := s.Root(types.ScopeMachine)
	u, _ := s.Root(types.ScopeUser)
	defer m.Close()
	defer u.Close()

	c, err := m.CreateChild("OnlyMachine", registry.AccessReadWrite)
	require.NoError(t, err)
	c.Close()

	_, err = u.OpenChild("OnlyMachine", registry.AccessRead)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestNode_ReadOnlyRejectsWrites(t *testing.T) {
	s := New()
	root, _ := s.Root(types.ScopeMachine)
	defer root.Close()
	c, _ := root.CreateChild("K", registry.AccessReadWrite)
	c.Close()

	ro, err := root.OpenChild("K", registry.AccessRead)
	require.NoError(t, err)
	defer ro.Close()

	err = ro.SetValue("x", types.REG_DWORD, []byte{0, 0, 0, 0})
	require.ErrorIs(t, err, types.ErrStore)
	var te *types.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, uint32(codeAccessDenied), te.Code)
}

func TestNode_DeleteSubkey(t *testing.T) {
	s := New()
	root, _ := s.Root(types.ScopeMachine)
	defer root.Close()

	c, _ := root.CreateChild(`A\B`, registry.AccessReadWrite)
	c.Close()

	err := root.DeleteSubkey("A")
	require.ErrorIs(t, err, types.ErrStore, "keys with children are not deleted")

	a, _ := root.OpenChild("A", registry.AccessReadWrite)
	held, _ := a.OpenChild("B", registry.AccessRead)
	require.NoError(t, a.DeleteSubkey("b"))
	a.Close()

	_, err = held.Stat()
	require.ErrorIs(t, err, types.ErrStore, "handles on deleted keys go stale")
	held.Close()

	require.ErrorIs(t, root.DeleteSubkey("missing"), types.ErrNotFound)
}

func TestNode_EnumerationOrder(t *testing.T) {
	s := New()
	root, _ := s.Root(types.ScopeMachine)
	defer root.Close()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		c, err := root.CreateChild(name, registry.AccessReadWrite)
		require.NoError(t, err)
		c.Close()
	}
	var got []string
	for i := 0; ; i++ {
		name, err := root.SubkeyName(i)
		if err != nil {
			require.ErrorIs(t, err, registry.ErrNoMoreItems)
			break
		}
		got = append(got, name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, got)
}

func TestStore_HandleAccounting(t *testing.T) {
	s := New()
	root, _ := s.Root(types.ScopeMachine)
	c, _ := root.CreateChild("K", registry.AccessReadWrite)
	assert.Equal(t, 2, s.OpenHandles())

	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Close(), types.ErrClosed)
	require.NoError(t, root.Close())
	assert.Equal(t, 0, s.OpenHandles())
}

const sampleDoc = `machine:
  - name: Software
    keys:
      - name: Classes
        keys:
          - name: Installer
            keys:
              - name: Dependencies
                keys:
                  - name: Foo
                    values:
                      - name: ""
                        type: REG_SZ
                        text: '{11111111-2222-3333-4444-555555555555}'
                      - name: Version
                        type: REG_SZ
                        text: 1.2.3.4
                      - name: Attributes
                        type: REG_DWORD
                        number: 256
                      - name: Tags
                        type: REG_MULTI_SZ
                        strings: [a, b]
                      - name: Blob
                        type: REG_BINARY
                        hex: deadbeef
user:
  - name: Empty
`

func TestLoad(t *testing.T) {
	s, err := Load(bytes.NewBufferString(sampleDoc))
	require.NoError(t, err)

	root, _ := s.Root(types.ScopeMachine)
	defer root.Close()
	k, err := registry.Open(root, types.RootKeyPath+`\Foo`)
	require.NoError(t, err)
	defer k.Close()

	v, ok := k.Value("")
	require.True(t, ok)
	assert.Equal(t, values.String("{11111111-2222-3333-4444-555555555555}"), v)

	v, ok = k.Value("Attributes")
	require.True(t, ok)
	assert.Equal(t, values.DWord(256), v)

	v, ok = k.Value("Tags")
	require.True(t, ok)
	assert.Equal(t, values.MultiString{"a", "b"}, v)

	v, ok = k.Value("Blob")
	require.True(t, ok)
	assert.Equal(t, values.Binary{0xde, 0xad, 0xbe, 0xef}, v)

	user, _ := s.Root(types.ScopeUser)
	defer user.Close()
	e, err := registry.Open(user, "Empty")
	require.NoError(t, err)
	e.Close()
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(bytes.NewBufferString("machine: [{name: K, values: [{name: v, type: REG_WHAT}]}]"))
	require.ErrorIs(t, err, types.ErrFormat)

	_, err = Load(bytes.NewBufferString("machine: [{name: K, values: [{name: v, type: REG_DWORD, number: 4294967296}]}]"))
	require.ErrorIs(t, err, types.ErrFormat)

	_, err = Load(bytes.NewBufferString("machine: [{values: []}]"))
	require.ErrorIs(t, err, types.ErrFormat)

	s, err := Load(bytes.NewBufferString(""))
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSaveLoad_PreservesPayloads(t *testing.T) {
	s, err := Load(bytes.NewBufferString(sampleDoc))
	require.NoError(t, err)

	// A DWORD with trailing bytes has no typed rendering.
	root, _ := s.Root(types.ScopeUser)
	require.NoError(t, root.SetValue("odd", types.REG_DWORD, []byte{1, 0, 0, 0, 9}))
	root.Close()

	path := filepath.Join(t.TempDir(), "nested", "store.yaml")
	require.NoError(t, s.SaveFile(path))

	again, err := LoadFile(path)
	require.NoError(t, err)

	var first, second bytes.Buffer
	require.NoError(t, s.Save(&first))
	require.NoError(t, again.Save(&second))
	assert.Equal(t, first.String(), second.String())
	assert.Contains(t, first.String(), "0100000009")
}

func TestLoadFile_Missing(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	root, _ := s.Root(types.ScopeMachine)
	defer root.Close()
	info, err := root.Stat()
	require.NoError(t, err)
	assert.Equal(t, registry.NodeInfo{}, info)
}

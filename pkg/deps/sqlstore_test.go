package deps

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pkgdep/pkg/registry/sqlstore"
	"github.com/joshuapare/pkgdep/pkg/types"
)

func TestChecker_SQLiteBackend(t *testing.T) {
	s, err := sqlstore.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer s.Close()

	c := New(s)
	require.NoError(t, c.RegisterProvider(Provider{Key: "Runtime", Name: "Runtime", Version: vp("4.8")}, types.ScopeUser))
	require.NoError(t, c.RegisterProvider(Provider{Key: "App", Name: "App", Version: vp("1.0")}, types.ScopeUser))
	require.NoError(t, c.RegisterDependent("Runtime", "App", types.ScopeUser))

	var violations Set
	require.NoError(t, c.CheckDependency("runtime", types.ScopeUser,
		Range{Min: vp("4.8"), Attributes: types.AttrMinVersionInclusive}, &violations))

	got, err := c.CheckDependents("RUNTIME", types.ScopeUser, DependentsOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "App (App)", got[0].String())

	got, err = c.CheckDependents("Runtime", types.ScopeMachine, DependentsOptions{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

package deps

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pkgdep/pkg/registry/memstore"
	"github.com/joshuapare/pkgdep/pkg/registry/sqlstore"
	"github.com/joshuapare/pkgdep/pkg/types"
)

// backends returns a constructor for a checker over each store backend.
func backends() map[string]func(t *testing.T) *Checker {
	return map[string]func(t *testing.T) *Checker{
		"memstore": func(t *testing.T) *Checker {
			return New(memstore.New())
		},
		"sqlstore": func(t *testing.T) *Checker {
			s, err := sqlstore.Open(filepath.Join(t.TempDir(), "ledger.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return New(s)
		},
	}
}

// seedFooBar registers Foo with dependents Bar and Baz, and Bar itself.
func seedFooBar(t *testing.T, c *Checker) {
	t.Helper()
	require.NoError(t, c.RegisterProvider(Provider{Key: "Foo", Name: "Foo Package", Version: vp("1.2.3.4")}, types.ScopeMachine))
	require.NoError(t, c.RegisterProvider(Provider{Key: "Bar", Name: "Bar", Version: vp("1.0")}, types.ScopeMachine))
	require.NoError(t, c.RegisterDependent("Foo", "Bar", types.ScopeMachine))
	require.NoError(t, c.RegisterDependent("Foo", "Baz", types.ScopeMachine))
}

func TestUnregister_RejectsInvalidKeys(t *testing.T) {
	tests := []struct {
		name       string
		unregister func(c *Checker) error
	}{
		{
			name:       "empty provider",
			unregister: func(c *Checker) error { return c.UnregisterProvider("", types.ScopeMachine) },
		},
		{
			name:       "blank provider",
			unregister: func(c *Checker) error { return c.UnregisterProvider("  ", types.ScopeMachine) },
		},
		{
			name:       "provider path reaching dependents",
			unregister: func(c *Checker) error { return c.UnregisterProvider(`Foo\Dependents`, types.ScopeMachine) },
		},
		{
			name:       "provider path reaching one dependent",
			unregister: func(c *Checker) error { return c.UnregisterProvider(`Foo\Dependents\Bar`, types.ScopeMachine) },
		},
		{
			name:       "empty dependent",
			unregister: func(c *Checker) error { return c.UnregisterDependent("Foo", "", types.ScopeMachine) },
		},
		{
			name:       "nested dependent",
			unregister: func(c *Checker) error { return c.UnregisterDependent("Foo", `Bar\x`, types.ScopeMachine) },
		},
		{
			name:       "empty provider of dependent",
			unregister: func(c *Checker) error { return c.UnregisterDependent("", "Bar", types.ScopeMachine) },
		},
		{
			name:       "provider path of dependent",
			unregister: func(c *Checker) error { return c.UnregisterDependent(`Foo\Dependents`, "Bar", types.ScopeMachine) },
		},
	}

	for backend, newChecker := range backends() {
		for _, tt := range tests {
			t.Run(backend+"/"+tt.name, func(t *testing.T) {
				c := newChecker(t)
				seedFooBar(t, c)

				require.ErrorIs(t, tt.unregister(c), types.ErrFormat)

				p, err := c.GetProvider("Foo", types.ScopeMachine)
				require.NoError(t, err, "Foo must survive")
				assert.Equal(t, "Foo Package", p.Name)
				_, err = c.GetProvider("Bar", types.ScopeMachine)
				require.NoError(t, err, "Bar must survive")

				remaining, err := c.CheckDependents("Foo", types.ScopeMachine, DependentsOptions{})
				require.NoError(t, err)
				assert.Len(t, remaining, 2)
			})
		}
	}
}

func TestUnregister_MissingKeys(t *testing.T) {
	for backend, newChecker := range backends() {
		t.Run(backend, func(t *testing.T) {
			c := newChecker(t)

			require.NoError(t, c.UnregisterProvider("Foo", types.ScopeMachine), "no ledger root")
			require.NoError(t, c.UnregisterDependent("Foo", "Bar", types.ScopeMachine), "no ledger root")

			seedFooBar(t, c)
			require.NoError(t, c.UnregisterProvider("Missing", types.ScopeMachine))
			require.NoError(t, c.UnregisterDependent("Missing", "Bar", types.ScopeMachine))
			require.NoError(t, c.UnregisterDependent("Foo", "Missing", types.ScopeMachine))

			remaining, err := c.CheckDependents("Foo", types.ScopeMachine, DependentsOptions{})
			require.NoError(t, err)
			assert.Len(t, remaining, 2)
		})
	}
}

func TestUnregister_ProviderWithDependentsIsKept(t *testing.T) {
	for backend, newChecker := range backends() {
		t.Run(backend, func(t *testing.T) {
			c := newChecker(t)
			seedFooBar(t, c)

			err := c.UnregisterProvider("foo", types.ScopeMachine)
			require.Error(t, err)
			kind, ok := types.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, types.ErrKindState, kind)

			require.NoError(t, c.UnregisterDependent("Foo", "Bar", types.ScopeMachine))
			remaining, err := c.CheckDependents("Foo", types.ScopeMachine, DependentsOptions{})
			require.NoError(t, err)
			require.Len(t, remaining, 1)
			assert.Equal(t, "Baz", remaining[0].Key)

			require.Error(t, c.UnregisterProvider("Foo", types.ScopeMachine), "Baz still depends on Foo")

			require.NoError(t, c.UnregisterDependent("Foo", "baz", types.ScopeMachine))
			require.NoError(t, c.UnregisterProvider("Foo", types.ScopeMachine))
			_, err = c.GetProvider("Foo", types.ScopeMachine)
			require.ErrorIs(t, err, types.ErrNotFound)
			_, err = c.GetProvider("Bar", types.ScopeMachine)
			require.NoError(t, err, "unrelated providers are untouched")
		})
	}
}

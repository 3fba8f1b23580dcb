package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport(t *testing.T) {
	s := testSession(t)
	seedLedger(t, s)
	regPath := filepath.Join(t.TempDir(), "ledger.reg")
	exportOutput = regPath

	_, err := captureOutput(t, func() error { return runExport(nil) })
	require.NoError(t, err)
	data, err := os.ReadFile(regPath)
	require.NoError(t, err)
	assertContains(t, string(data), []string{
		"Windows Registry Editor Version 5.00",
		`[HKEY_LOCAL_MACHINE\Software\Classes\Installer\Dependencies\Foo]`,
		`"DisplayName"="Foo Package"`,
		`"Version"="1.2.3.4"`,
		`[HKEY_LOCAL_MACHINE\Software\Classes\Installer\Dependencies\Foo\Dependents\Bar]`,
	})

	s = testSession(t)
	out, err := captureOutput(t, func() error { return runImport([]string{regPath}) })
	require.NoError(t, err)
	assertContains(t, out, []string{"values set"})
	assert.True(t, s.dirty)

	out, err = captureOutput(t, func() error { return runDependents("Foo") })
	require.NoError(t, err)
	assert.Equal(t, "Bar (Bar)\nOrphan\n", out)
}

func TestExport_SingleProvider(t *testing.T) {
	s := testSession(t)
	seedLedger(t, s)

	out, err := captureOutput(t, func() error { return runExport([]string{"Bar"}) })
	require.NoError(t, err)
	assertContains(t, out, []string{`[HKEY_LOCAL_MACHINE\Software\Classes\Installer\Dependencies\Bar]`})
	assertNotContains(t, out, []string{`Dependencies\Foo`})

	_, err = captureOutput(t, func() error { return runExport([]string{"Missing"}) })
	assert.Error(t, err)
}

func TestImport_MissingFile(t *testing.T) {
	s := testSession(t)
	err := runImport([]string{filepath.Join(t.TempDir(), "absent.reg")})
	assert.Error(t, err)
	assert.False(t, s.dirty)
}

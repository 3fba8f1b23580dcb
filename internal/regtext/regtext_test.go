package regtext

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/registry/memstore"
	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
)

const ledger = `Windows Registry Editor Version 5.00

; provider Foo
[HKEY_LOCAL_MACHINE\Software\Classes\Installer\Dependencies\Foo]
@="{11111111-2222-3333-4444-555555555555}"
"DisplayName"="Foo \"Package\""
"Version"="1.2.3.4"
"Attributes"=dword:00000100
"Packed"=hex(b):04,00,03,00,02,00,01,00
"Tags"=hex(7):61,00,00,00,62,00,00,00,00,00
"Blob"=hex:de,ad,\
  be,ef

[HKLM\Software\Classes\Installer\Dependencies\Foo\Dependents\Bar]

[HKCU\Software\Scratch]
"gone"="x"
"gone"=-
`

func TestParse(t *testing.T) {
	ops, err := Parse([]byte(ledger), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, ops, 12)

	assert.Equal(t, OpCreateKey{Path: `HKEY_LOCAL_MACHINE\Software\Classes\Installer\Dependencies\Foo`}, ops[0])
	assert.Equal(t, "", ops[1].(OpSetValue).Name)
	assert.Equal(t, types.REG_QWORD, ops[5].(OpSetValue).Type)
	assert.Equal(t, types.REG_MULTI_SZ, ops[6].(OpSetValue).Type)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, ops[7].(OpSetValue).Data)
	assert.Equal(t, `HKEY_LOCAL_MACHINE\Software\Classes\Installer\Dependencies\Foo\Dependents\Bar`, ops[8].KeyPath())
	assert.Equal(t, OpDeleteValue{Path: `HKEY_CURRENT_USER\Software\Scratch`, Name: "gone"}, ops[11])
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"missing header":        "[HKLM\\X]\n",
		"value before section":  RegFileHeader + "\n\"a\"=\"b\"\n",
		"malformed section":     RegFileHeader + "\n[HKLM\\X\n",
		"bad dword":             RegFileHeader + "\n[HKLM\\X]\n\"a\"=dword:123\n",
		"bad hex":               RegFileHeader + "\n[HKLM\\X]\n\"a\"=hex:zz\n",
		"unterminated string":   RegFileHeader + "\n[HKLM\\X]\n\"a\"=\"b\n",
		"unsupported payload":   RegFileHeader + "\n[HKLM\\X]\n\"a\"=qword:1\n",
		"dangling continuation": RegFileHeader + "\n[HKLM\\X]\n\"a\"=hex:01,\\\n",
		"empty input":           "",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in), ParseOptions{})
			require.ErrorIs(t, err, types.ErrFormat)
		})
	}
}

func TestParse_Encodings(t *testing.T) {
	doc := RegFileHeader + "\r\n\r\n[HKCU\\Caf\u00e9]\r\n\"n\"=\"\u00e9\"\r\n"

	utf16, err := encodeOutput(doc, EncodingUTF16LE, true)
	require.NoError(t, err)
	ops, err := Parse(utf16, ParseOptions{})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "HKEY_CURRENT_USER\\Caf\u00e9", ops[0].KeyPath())

	latin1, err := encodeOutput(doc, EncodingWindows1252, false)
	require.NoError(t, err)
	ops, err = Parse(latin1, ParseOptions{InputEncoding: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "HKEY_CURRENT_USER\\Caf\u00e9", ops[0].KeyPath())

	_, err = Parse([]byte(doc), ParseOptions{InputEncoding: "EBCDIC"})
	require.ErrorIs(t, err, errUnsupportedEncoding)
}

func TestSplitRoot(t *testing.T) {
	tests := []struct {
		in    string
		scope types.Scope
		rel   string
	}{
		{`HKEY_LOCAL_MACHINE\Software\X`, types.ScopeMachine, `Software\X`},
		{`hklm\Software`, types.ScopeMachine, `Software`},
		{`HKCU\`, types.ScopeUser, ``},
		{`HKEY_CLASSES_ROOT\.txt`, types.ScopeMachine, `Software\Classes\.txt`},
	}
	for _, tt := range tests {
		scope, rel, err := SplitRoot(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.scope, scope, tt.in)
		assert.Equal(t, tt.rel, rel, tt.in)
	}

	_, _, err := SplitRoot(`HKU\S-1-5-18`)
	require.ErrorIs(t, err, types.ErrNotSupported)

	assert.Equal(t, `HKEY_CURRENT_USER\Software`, JoinRoot(types.ScopeUser, `Software\`))
	assert.Equal(t, `HKEY_LOCAL_MACHINE`, JoinRoot(types.ScopeMachine, ``))
}

func TestExpandRootKeyAlias(t *testing.T) {
	assert.Equal(t, `HKEY_LOCAL_MACHINE\SOFTWARE`, expandRootKeyAlias(`hklm\SOFTWARE`))
	assert.Equal(t, `HKEY_USERS`, expandRootKeyAlias(`HKU`))
	assert.Equal(t, `SOFTWARE\Microsoft`, expandRootKeyAlias(`SOFTWARE\Microsoft`))
}

func TestImport(t *testing.T) {
	s := memstore.New()
	st, err := Import(strings.NewReader(ledger), s, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, Stats{KeysCreated: 3, ValuesSet: 8, ValuesDeleted: 1}, st)

	root, _ := s.Root(types.ScopeMachine)
	defer root.Close()
	k, err := registry.Open(root, types.RootKeyPath+`\Foo`)
	require.NoError(t, err)
	defer k.Close()

	v, ok := k.Value(types.DisplayNameValue)
	require.True(t, ok)
	assert.Equal(t, values.String(`Foo "Package"`), v)
	v, ok = k.Value("Packed")
	require.True(t, ok)
	assert.Equal(t, values.QWord(0x0001000200030004), v)
	v, ok = k.Value("Tags")
	require.True(t, ok)
	assert.Equal(t, values.MultiString{"a", "b"}, v)

	user, _ := s.Root(types.ScopeUser)
	defer user.Close()
	scratch, err := registry.Open(user, `Software\Scratch`)
	require.NoError(t, err)
	defer scratch.Close()
	_, ok = scratch.Value("gone")
	assert.False(t, ok)
}

func TestImport_DeleteKey(t *testing.T) {
	s := memstore.New()
	_, err := Import(strings.NewReader(ledger), s, ParseOptions{})
	require.NoError(t, err)

	del := RegFileHeader + "\n\n[-HKEY_LOCAL_MACHINE\\Software\\Classes\\Installer\\Dependencies\\Foo]\n[-HKLM\\Software\\Missing\\Key]\n"
	st, err := Import(strings.NewReader(del), s, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, st.KeysDeleted)

	root, _ := s.Root(types.ScopeMachine)
	defer root.Close()
	_, err = registry.Open(root, types.RootKeyPath+`\Foo`)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestExport_RoundTrip(t *testing.T) {
	s := memstore.New()
	_, err := Import(strings.NewReader(ledger), s, ParseOptions{})
	require.NoError(t, err)

	root, _ := s.Root(types.ScopeMachine)
	k, err := registry.Open(root, types.RootKeyPath)
	require.NoError(t, err)

	var out bytes.Buffer
	path := JoinRoot(types.ScopeMachine, types.RootKeyPath)
	require.NoError(t, Export(&out, k, path, ExportOptions{}))
	k.Close()
	root.Close()

	text := out.String()
	assert.True(t, strings.HasPrefix(text, RegFileHeader+CRLF))
	assert.Contains(t, text, `"DisplayName"="Foo \"Package\""`)
	assert.Contains(t, text, `"Attributes"=dword:00000100`)
	assert.Contains(t, text, `"Packed"=hex(b):04,00,03,00,02,00,01,00`)
	assert.Contains(t, text, `[HKEY_LOCAL_MACHINE\Software\Classes\Installer\Dependencies\Foo\Dependents\Bar]`)

	// Re-importing the export into a fresh store reproduces it exactly.
	fresh := memstore.New()
	_, err = Import(strings.NewReader(text), fresh, ParseOptions{})
	require.NoError(t, err)
	root2, _ := fresh.Root(types.ScopeMachine)
	k2, err := registry.Open(root2, types.RootKeyPath)
	require.NoError(t, err)
	var again bytes.Buffer
	require.NoError(t, Export(&again, k2, path, ExportOptions{}))
	k2.Close()
	root2.Close()
	assert.Equal(t, text, again.String())
}

func TestExport_UTF16WithBOM(t *testing.T) {
	s := memstore.New()
	root, _ := s.Root(types.ScopeUser)
	defer root.Close()
	k, _ := registry.Create(root, "K")
	defer k.Close()
	require.NoError(t, k.SetValue("v", values.String("x")))

	var out bytes.Buffer
	require.NoError(t, Export(&out, k, `HKEY_CURRENT_USER\K`, ExportOptions{OutputEncoding: EncodingUTF16LE, WithBOM: true}))
	require.True(t, bytes.HasPrefix(out.Bytes(), UTF16LEBOM))

	ops, err := Parse(out.Bytes(), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, ops, 2)
}

func TestFormatHex_Wraps(t *testing.T) {
	data := make([]byte, 30)
	got := formatHex(data)
	assert.Contains(t, got, Backslash+CRLF)
	parsed, err := parseHexBytes("hex:" + got)
	require.NoError(t, err)
	assert.Equal(t, data, parsed)
}

func TestUnescapeRegString(t *testing.T) {
	assert.Equal(t, `C:\dir\`, unescapeRegString(`C:\\dir\\`))
	assert.Equal(t, `say "hi"`, unescapeRegString(`say \"hi\"`))
	assert.Equal(t, `plain`, unescapeRegString(`plain`))
	assert.Equal(t, `a\\b`, escapeRegString(`a\b`))
}

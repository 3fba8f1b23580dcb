package regtext

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
)

// ExportOptions controls Export.
type ExportOptions struct {
	// OutputEncoding is "UTF-8" (default), "UTF-16LE" or "WINDOWS-1252".
	OutputEncoding string
	// WithBOM prefixes UTF-16LE output with a byte order mark.
	WithBOM bool
}

// Export writes k and everything below it as a .reg document. path is the
// full path printed for k, e.g. HKEY_LOCAL_MACHINE\Software\Vendor.
func Export(w io.Writer, k *registry.Key, path string, opts ExportOptions) error {
	var b bytes.Buffer
	b.WriteString(RegFileHeader + CRLF + CRLF)
	if err := exportKey(&b, k, strings.TrimRight(path, Backslash)); err != nil {
		return err
	}
	out, err := encodeOutput(b.String(), opts.OutputEncoding, opts.WithBOM)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func exportKey(b *bytes.Buffer, k *registry.Key, path string) error {
	b.WriteString(KeyOpenBracket + path + KeyCloseBracket + CRLF)

	names, err := k.ValueNames()
	if err != nil {
		return err
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	for _, name := range names {
		data, typ, err := k.RawValue(name)
		if err != nil {
			return err
		}
		emitValue(b, name, typ, data)
	}
	b.WriteString(CRLF)

	it, err := k.Keys()
	if err != nil {
		return err
	}
	var children []string
	for it.Next() {
		children = append(children, it.Name())
	}
	it.Close()
	sort.Slice(children, func(i, j int) bool {
		return strings.ToLower(children[i]) < strings.ToLower(children[j])
	})

	for _, name := range children {
		child, err := k.OpenSubkey(name)
		if err != nil {
			return err
		}
		err = exportKey(b, child, path+Backslash+name)
		child.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func emitValue(b *bytes.Buffer, name string, typ types.RegType, data []byte) {
	if name == "" {
		b.WriteString(DefaultValuePrefix)
	} else {
		b.WriteString(Quote + escapeRegString(name) + Quote + ValueAssignment)
	}

	switch {
	case typ == types.REG_SZ && canonicalString(data):
		b.WriteString(Quote + escapeRegString(values.DecodeString(data)) + Quote)
	case typ == types.REG_DWORD && len(data) == 4:
		v, _ := values.Decode(data, typ)
		fmt.Fprintf(b, DWORDPrefix+DWORDHexFormat, uint32(v.(values.DWord)))
	case typ == types.REG_BINARY:
		b.WriteString(HexPrefix + formatHex(data))
	default:
		fmt.Fprintf(b, HexTypeFormat, uint32(typ))
		b.WriteString(formatHex(data))
	}
	b.WriteString(CRLF)
}

// canonicalString reports whether a REG_SZ payload survives a decode and
// re-encode unchanged, so it can be written in quoted form.
func canonicalString(data []byte) bool {
	s := values.DecodeString(data)
	enc, err := values.EncodeString(s)
	return err == nil && bytes.Equal(enc, data)
}

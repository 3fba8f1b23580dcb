package memstore

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
)

// document is the on-disk layout. Lists rather than maps keep the
// enumeration order stable across a load/save cycle.
type document struct {
	Machine []yamlKey `yaml:"machine,omitempty"`
	User    []yamlKey `yaml:"user,omitempty"`
}

type yamlKey struct {
	Name   string      `yaml:"name"`
	Values []yamlValue `yaml:"values,omitempty"`
	Keys   []yamlKey   `yaml:"keys,omitempty"`
}

// yamlValue carries exactly one of the payload fields, chosen by Type.
type yamlValue struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Text    *string  `yaml:"text,omitempty"`
	Number  *uint64  `yaml:"number,omitempty"`
	Strings []string `yaml:"strings,omitempty"`
	Hex     string   `yaml:"hex,omitempty"`
}

// Load reads a store from YAML.
func Load(r io.Reader) (*Store, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, types.FormatError("parsing store document", err)
	}
	s := New()
	if err := fill(s.roots[types.ScopeMachine], doc.Machine); err != nil {
		return nil, err
	}
	if err := fill(s.roots[types.ScopeUser], doc.User); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile reads a store from path. A missing file yields an empty store.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Save writes the store as YAML.
func (s *Store) Save(w io.Writer) error {
	s.mu.RLock()
	doc := document{
		Machine: dump(s.roots[types.ScopeMachine]),
		User:    dump(s.roots[types.ScopeUser]),
	}
	s.mu.RUnlock()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}
	return enc.Close()
}

// SaveFile writes the store to path, creating parent directories.
func (s *Store) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	return nil
}

func fill(parent *node, keys []yamlKey) error {
	for _, k := range keys {
		if k.Name == "" {
			return types.FormatError("key without a name", nil)
		}
		_, n := parent.child(k.Name)
		if n == nil {
			n = &node{name: k.Name}
			parent.children = append(parent.children, n)
		}
		for _, yv := range k.Values {
			typ, data, err := yv.payload()
			if err != nil {
				return fmt.Errorf("key %q value %q: %w", k.Name, yv.Name, err)
			}
			if _, v := n.value(yv.Name); v != nil {
				v.typ, v.data = typ, data
				continue
			}
			n.values = append(n.values, &value{name: yv.Name, typ: typ, data: data})
		}
		if err := fill(n, k.Keys); err != nil {
			return err
		}
	}
	return nil
}

func (yv yamlValue) payload() (types.RegType, []byte, error) {
	typ, err := types.ParseRegType(yv.Type)
	if err != nil {
		return 0, nil, err
	}
	if yv.Hex != "" {
		data, err := hex.DecodeString(yv.Hex)
		if err != nil {
			return 0, nil, types.FormatError("invalid hex payload", err)
		}
		return typ, data, nil
	}
	switch typ {
	case types.REG_SZ, types.REG_EXPAND_SZ:
		text := ""
		if yv.Text != nil {
			text = *yv.Text
		}
		data, err := values.EncodeString(text)
		return typ, data, err
	case types.REG_MULTI_SZ:
		data, err := values.EncodeMultiString(yv.Strings)
		return typ, data, err
	case types.REG_DWORD:
		var n uint64
		if yv.Number != nil {
			n = *yv.Number
		}
		if n > 0xFFFFFFFF {
			return 0, nil, types.FormatError(fmt.Sprintf("dword %d out of range", n), nil)
		}
		_, data, err := values.Encode(values.DWord(n))
		return typ, data, err
	case types.REG_QWORD:
		var n uint64
		if yv.Number != nil {
			n = *yv.Number
		}
		_, data, err := values.Encode(values.QWord(n))
		return typ, data, err
	default:
		return typ, nil, nil
	}
}

func dump(n *node) []yamlKey {
	var out []yamlKey
	for _, c := range n.children {
		k := yamlKey{Name: c.name, Keys: dump(c)}
		for _, v := range c.values {
			k.Values = append(k.Values, dumpValue(v))
		}
		out = append(out, k)
	}
	return out
}

func dumpValue(v *value) yamlValue {
	yv := yamlValue{Name: v.name, Type: v.typ.String()}
	decoded, ok := values.Decode(v.data, v.typ)
	if !ok || !canonical(decoded, v) {
		if len(v.data) > 0 {
			yv.Hex = hex.EncodeToString(v.data)
		}
		return yv
	}
	switch d := decoded.(type) {
	case values.String:
		s := string(d)
		yv.Text = &s
	case values.ExpandString:
		s := string(d)
		yv.Text = &s
	case values.MultiString:
		yv.Strings = d
	case values.DWord:
		n := uint64(d)
		yv.Number = &n
	case values.QWord:
		n := uint64(d)
		yv.Number = &n
	default:
		yv.Hex = hex.EncodeToString(v.data)
	}
	return yv
}

// canonical reports whether re-encoding the decoded value reproduces the
// stored bytes. Anything else is kept as hex so a save/load cycle never
// changes a payload.
func canonical(decoded values.Value, v *value) bool {
	_, data, err := values.Encode(decoded)
	return err == nil && bytes.Equal(data, v.data)
}

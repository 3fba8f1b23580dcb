// Package regtext reads and writes regedit .reg documents against a
// registry.Backend.
package regtext

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/pkgdep/internal/buf"
	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
)

// Op is one change described by a .reg document.
type Op interface {
	// KeyPath is the full path (with HKEY root) the op applies to.
	KeyPath() string
}

// OpCreateKey ensures a key exists.
type OpCreateKey struct{ Path string }

// OpDeleteKey removes a key and everything below it.
type OpDeleteKey struct{ Path string }

// OpSetValue writes one value.
type OpSetValue struct {
	Path string
	Name string
	Type types.RegType
	Data []byte
}

// OpDeleteValue removes one value.
type OpDeleteValue struct {
	Path string
	Name string
}

func (o OpCreateKey) KeyPath() string   { return o.Path }
func (o OpDeleteKey) KeyPath() string   { return o.Path }
func (o OpSetValue) KeyPath() string    { return o.Path }
func (o OpDeleteValue) KeyPath() string { return o.Path }

// ParseOptions controls Parse.
type ParseOptions struct {
	// InputEncoding is used when the document has no byte order mark:
	// "UTF-8" (default), "UTF-16LE" or "WINDOWS-1252".
	InputEncoding string
}

// Parse converts .reg text into operations, in document order.
func Parse(data []byte, opts ParseOptions) ([]Op, error) {
	text, err := decodeInput(data, opts.InputEncoding)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, ScannerInitialBufferSize), ScannerMaxLineSize)

	var (
		ops        []Op
		current    string
		seenHeader bool
		lineNo     int
		pending    strings.Builder
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r"))

		// Hex payloads continue onto the next line after a trailing backslash.
		if pending.Len() > 0 || (strings.HasSuffix(line, Backslash) && isContinuable(line)) {
			pending.WriteString(strings.TrimSuffix(line, Backslash))
			if strings.HasSuffix(line, Backslash) {
				continue
			}
			line = pending.String()
			pending.Reset()
		}

		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}
		if !seenHeader {
			if line != RegFileHeader {
				return nil, types.FormatError(fmt.Sprintf("regtext: line %d: missing header", lineNo), nil)
			}
			seenHeader = true
			continue
		}
		if strings.HasPrefix(line, KeyOpenBracket) {
			if !strings.HasSuffix(line, KeyCloseBracket) {
				return nil, types.FormatError(fmt.Sprintf("regtext: line %d: malformed section %q", lineNo, line), nil)
			}
			section := strings.TrimSpace(line[1 : len(line)-1])
			if rest, ok := strings.CutPrefix(section, DeleteKeyPrefix); ok {
				ops = append(ops, OpDeleteKey{Path: expandRootKeyAlias(strings.TrimSpace(rest))})
				current = ""
				continue
			}
			current = expandRootKeyAlias(section)
			ops = append(ops, OpCreateKey{Path: current})
			continue
		}
		if current == "" {
			return nil, types.FormatError(fmt.Sprintf("regtext: line %d: value without section", lineNo), nil)
		}
		op, err := parseValueLine(current, line)
		if err != nil {
			return nil, types.FormatError(fmt.Sprintf("regtext: line %d", lineNo), err)
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning .reg file: %w", err)
	}
	if pending.Len() > 0 {
		return nil, types.FormatError("regtext: unterminated continuation at end of input", nil)
	}
	if !seenHeader {
		return nil, types.FormatError("regtext: missing header", nil)
	}
	return ops, nil
}

// isContinuable reports whether a trailing backslash on line is a hex
// continuation rather than part of a string or section name.
func isContinuable(line string) bool {
	return !strings.HasPrefix(line, KeyOpenBracket) && strings.Contains(strings.ToLower(line), "=hex")
}

func parseValueLine(path, line string) (Op, error) {
	if rest, ok := strings.CutPrefix(line, DefaultValuePrefix); ok {
		return parseValue(path, "", rest)
	}
	if !strings.HasPrefix(line, Quote) {
		return nil, fmt.Errorf("malformed value line %q", line)
	}
	end := findClosingQuote(line)
	if end < 0 {
		return nil, fmt.Errorf("unterminated value name in %q", line)
	}
	name := unescapeRegString(line[1:end])
	rest := strings.TrimSpace(line[end+1:])
	if !strings.HasPrefix(rest, ValueAssignment) {
		return nil, fmt.Errorf("missing '=' in %q", line)
	}
	return parseValue(path, name, rest[1:])
}

func parseValue(path, name, payload string) (Op, error) {
	payload = strings.TrimSpace(payload)
	if payload == DeleteValueToken {
		return OpDeleteValue{Path: path, Name: name}, nil
	}
	if strings.HasPrefix(payload, Quote) {
		if len(payload) < 2 || findClosingQuote(payload) != len(payload)-1 {
			return nil, fmt.Errorf("unterminated string %q", payload)
		}
		data, err := values.EncodeString(unescapeRegString(payload[1 : len(payload)-1]))
		if err != nil {
			return nil, err
		}
		return OpSetValue{Path: path, Name: name, Type: types.REG_SZ, Data: data}, nil
	}
	if hexPart, ok := strings.CutPrefix(strings.ToLower(payload), DWORDPrefix); ok {
		if len(hexPart) != DWORDHexLength {
			return nil, fmt.Errorf("invalid dword %q", payload)
		}
		n, err := strconv.ParseUint(hexPart, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid dword %q: %w", payload, err)
		}
		return OpSetValue{Path: path, Name: name, Type: types.REG_DWORD, Data: buf.LE32(uint32(n))}, nil
	}
	lower := strings.ToLower(payload)
	if strings.HasPrefix(lower, "hex") {
		typ := types.REG_BINARY
		tag, typed, err := parseHexValueType(lower)
		if err != nil {
			return nil, err
		}
		if typed {
			typ = types.RegType(tag)
		} else if !strings.HasPrefix(lower, HexPrefix) {
			return nil, fmt.Errorf("unsupported value %q", payload)
		}
		data, err := parseHexBytes(payload)
		if err != nil {
			return nil, err
		}
		return OpSetValue{Path: path, Name: name, Type: typ, Data: data}, nil
	}
	return nil, fmt.Errorf("unsupported value %q", payload)
}

package regtext

import (
	"errors"
	"fmt"
	"strings"
)

// unescapeRegString unescapes a string from .reg format.
// .reg files escape backslashes as \\ and quotes as \"
func unescapeRegString(s string) string {
	if strings.IndexByte(s, '\\') == -1 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '"') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func escapeRegString(s string) string {
	s = strings.ReplaceAll(s, Backslash, EscapedBackslash)
	return strings.ReplaceAll(s, Quote, EscapedQuote)
}

// findClosingQuote finds the position of the closing quote in a line,
// accounting for escaped quotes (preceded by an odd number of backslashes).
// Returns -1 if no valid closing quote is found.
// The search starts at position 1 (assuming the opening quote is at position 0).
func findClosingQuote(line string) int {
	for i := 1; i < len(line); i++ {
		if line[i] != '"' {
			continue
		}
		n := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			n++
		}
		if n%2 == 0 {
			return i
		}
	}
	return -1
}

// parseHexBytes parses the comma separated bytes after the first colon of
// payload (hex:01,02 or hex(7):...). Whitespace and continuation
// backslashes are skipped, and single-digit bytes are zero padded.
func parseHexBytes(payload string) ([]byte, error) {
	colon := strings.IndexByte(payload, ':')
	if colon == -1 {
		return nil, errors.New("invalid hex data format: missing colon")
	}
	payload = payload[colon+1:]

	out := make([]byte, 0, len(payload)/3+1)
	for _, part := range strings.Split(payload, HexByteSeparator) {
		part = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\\' {
				return -1
			}
			return r
		}, part)
		if part == "" {
			continue
		}
		if len(part) > 2 {
			return nil, fmt.Errorf("invalid hex byte %q", part)
		}
		var b byte
		for i := 0; i < len(part); i++ {
			n := hexCharToNibble(part[i])
			if n == 0xFF {
				return nil, fmt.Errorf("invalid hex byte %q", part)
			}
			b = b<<4 | n
		}
		out = append(out, b)
	}
	return out, nil
}

// hexCharToNibble converts a hex character to its 4-bit value
// Returns 0xFF for invalid characters.
func hexCharToNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0xFF
	}
}

// parseHexValueType extracts the tag from a hex(<tag>): prefix. The tag is
// hexadecimal, so hex(b) is REG_QWORD.
func parseHexValueType(payload string) (uint32, bool, error) {
	if !strings.HasPrefix(payload, "hex(") {
		return 0, false, nil
	}
	end := strings.IndexByte(payload, ')')
	if end < 5 {
		return 0, false, fmt.Errorf("malformed hex type in %q", payload)
	}
	var tag uint32
	for i := 4; i < end; i++ {
		n := hexCharToNibble(payload[i])
		if n == 0xFF || tag > 0x0FFFFFFF {
			return 0, false, fmt.Errorf("malformed hex type in %q", payload)
		}
		tag = tag<<4 | uint32(n)
	}
	return tag, true, nil
}

// formatHex renders data as comma separated bytes, wrapping long values
// with continuation lines.
func formatHex(data []byte) string {
	var b strings.Builder
	for i, c := range data {
		if i > 0 {
			b.WriteString(HexByteSeparator)
			if i%hexBytesPerLine == 0 {
				b.WriteString(Backslash + CRLF + "  ")
			}
		}
		fmt.Fprintf(&b, HexByteFormat, c)
	}
	return b.String()
}

package regtext

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var errUnsupportedEncoding = errors.New("regtext: unsupported encoding")

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(name) {
	case "", EncodingUTF8:
		return unicode.UTF8, nil
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case EncodingWindows1252, "CP1252":
		return charmap.Windows1252, nil
	default:
		return nil, errUnsupportedEncoding
	}
}

// decodeInput converts a .reg document to UTF-8. A byte order mark wins
// over the requested encoding; regedit writes UTF-16LE with a BOM.
func decodeInput(data []byte, enc string) (string, error) {
	if bytes.HasPrefix(data, UTF16LEBOM) {
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data[len(UTF16LEBOM):])
		return string(out), err
	}
	if bytes.HasPrefix(data, UTF8BOM) {
		return string(data[len(UTF8BOM):]), nil
	}
	e, err := lookupEncoding(enc)
	if err != nil {
		return "", err
	}
	out, err := e.NewDecoder().Bytes(data)
	return string(out), err
}

// encodeOutput converts UTF-8 text to the requested encoding. UTF-16LE
// output gets a BOM when withBOM is set.
func encodeOutput(text string, enc string, withBOM bool) ([]byte, error) {
	e, err := lookupEncoding(enc)
	if err != nil {
		return nil, err
	}
	out, err := e.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, err
	}
	if withBOM && strings.EqualFold(enc, EncodingUTF16LE) {
		out = append(append([]byte{}, UTF16LEBOM...), out...)
	}
	return out, nil
}

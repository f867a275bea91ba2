package fbtypes

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// charsets maps Firebird single-byte character sets to decoders.
// UTF8, UNICODE_FSS, NONE and OCTETS are read as-is.
var charsets = map[string]encoding.Encoding{
	"WIN1250":    charmap.Windows1250,
	"WIN1251":    charmap.Windows1251,
	"WIN1252":    charmap.Windows1252,
	"WIN1253":    charmap.Windows1253,
	"WIN1254":    charmap.Windows1254,
	"WIN1255":    charmap.Windows1255,
	"WIN1256":    charmap.Windows1256,
	"WIN1257":    charmap.Windows1257,
	"WIN1258":    charmap.Windows1258,
	"ISO8859_1":  charmap.ISO8859_1,
	"ISO8859_2":  charmap.ISO8859_2,
	"ISO8859_3":  charmap.ISO8859_3,
	"ISO8859_4":  charmap.ISO8859_4,
	"ISO8859_5":  charmap.ISO8859_5,
	"ISO8859_6":  charmap.ISO8859_6,
	"ISO8859_7":  charmap.ISO8859_7,
	"ISO8859_8":  charmap.ISO8859_8,
	"ISO8859_9":  charmap.ISO8859_9,
	"ISO8859_13": charmap.ISO8859_13,
	"KOI8R":      charmap.KOI8R,
	"KOI8U":      charmap.KOI8U,
	"DOS437":     charmap.CodePage437,
	"DOS850":     charmap.CodePage850,
	"DOS852":     charmap.CodePage852,
	"DOS860":     charmap.CodePage860,
	"DOS862":     charmap.CodePage862,
	"DOS863":     charmap.CodePage863,
	"DOS865":     charmap.CodePage865,
	"DOS866":     charmap.CodePage866,
}

// KnownCharset reports whether name is a character set the marshaller can
// decode, including the pass-through ones.
func KnownCharset(name string) bool {
	switch strings.ToUpper(name) {
	case "", "UTF8", "UNICODE_FSS", "NONE", "OCTETS":
		return true
	}
	_, ok := charsets[strings.ToUpper(name)]
	return ok
}

func (m *Marshaller) decodeText(b []byte) (string, error) {
	enc, ok := charsets[strings.ToUpper(m.opts.Charset)]
	if !ok {
		return string(b), nil
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

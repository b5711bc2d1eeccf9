package codec

import (
	"fmt"
	"strings"
)

// Scheme identifies one text transformation. The set is closed.
type Scheme uint8

const (
	Base32 Scheme = iota
	Base64
	Ascii85
	Baudot
	UnicodeCodePoint
	URL
	Punycode
	Bootstring
	Integer

	numSchemes
)

var schemeNames = [numSchemes]string{
	Base32:           "base32",
	Base64:           "base64",
	Ascii85:          "ascii85",
	Baudot:           "baudot",
	UnicodeCodePoint: "unicode",
	URL:              "url",
	Punycode:         "punycode",
	Bootstring:       "bootstring",
	Integer:          "integer",
}

var schemeLabels = [numSchemes]string{
	Base32:           "Base32",
	Base64:           "Base64",
	Ascii85:          "Ascii85",
	Baudot:           "Baudot",
	UnicodeCodePoint: "Unicode Code Points",
	URL:              "URL",
	Punycode:         "Punycode",
	Bootstring:       "Bootstring",
	Integer:          "Integer",
}

// Schemes returns every scheme in declaration order.
func Schemes() []Scheme {
	out := make([]Scheme, 0, numSchemes)
	for s := Scheme(0); s < numSchemes; s++ {
		out = append(out, s)
	}
	return out
}

// SchemeNames returns the identifiers accepted by ParseScheme.
func SchemeNames() []string {
	return append([]string(nil), schemeNames[:]...)
}

// ParseScheme resolves an identifier. Matching is exact and case-sensitive.
func ParseScheme(name string) (Scheme, error) {
	for s, n := range schemeNames {
		if n == name {
			return Scheme(s), nil
		}
	}
	return 0, &Error{
		Kind:   UnknownScheme,
		Detail: fmt.Sprintf("%q is not one of: %s", name, strings.Join(schemeNames[:], ", ")),
	}
}

// Valid reports whether s is one of the declared schemes.
func (s Scheme) Valid() bool {
	return s < numSchemes
}

func (s Scheme) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Scheme(%d)", uint8(s))
	}
	return schemeNames[s]
}

// Label is the human readable name used in display lines.
func (s Scheme) Label() string {
	if !s.Valid() {
		return s.String()
	}
	return schemeLabels[s]
}

func (s *Scheme) Set(v string) error {
	parsed, err := ParseScheme(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Scheme) Type() string {
	return "Scheme"
}

func (s Scheme) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid scheme %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Scheme) UnmarshalText(b []byte) error {
	return s.Set(string(b))
}

// Direction selects which half of a codec runs.
type Direction uint8

const (
	Encode Direction = iota
	Decode
)

// ParseDirection accepts "encode" or "decode".
func ParseDirection(v string) (Direction, error) {
	switch v {
	case "encode":
		return Encode, nil
	case "decode":
		return Decode, nil
	default:
		return 0, &Error{
			Kind:   InvalidInput,
			Detail: fmt.Sprintf("invalid operation type %q, must be one of: encode, decode", v),
		}
	}
}

func (d Direction) String() string {
	switch d {
	case Encode:
		return "encode"
	case Decode:
		return "decode"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Past is the past participle used in display lines ("Encoded", "Decoded").
func (d Direction) Past() string {
	if d == Decode {
		return "Decoded"
	}
	return "Encoded"
}

func (d *Direction) Set(v string) error {
	parsed, err := ParseDirection(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Direction) Type() string {
	return "Direction"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	return d.Set(string(b))
}

package codec

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

const codePointMarker = `\u`

// unicodeCodec writes each UTF-16 code unit as \uXXXX with no separator.
// Characters outside the BMP become a surrogate pair.
type unicodeCodec struct{}

func (unicodeCodec) Encode(in string) (string, error) {
	units := utf16.Encode([]rune(in))
	var b strings.Builder
	b.Grow(len(units) * 6)
	for _, u := range units {
		fmt.Fprintf(&b, `\u%04x`, u)
	}
	return b.String(), nil
}

func (unicodeCodec) Decode(in string) (string, error) {
	var units []uint16
	var runes []rune
	flush := func() {
		if len(units) > 0 {
			runes = append(runes, utf16.Decode(units)...)
			units = units[:0]
		}
	}

	for i, group := range strings.Split(in, codePointMarker) {
		if group == "" {
			continue
		}
		v, err := strconv.ParseUint(group, 16, 32)
		if err != nil || v > 0x10FFFF {
			return "", invalidInput(err, "group %d (%q) is not a hexadecimal code point", i, group)
		}
		if v <= 0xFFFF {
			units = append(units, uint16(v))
			continue
		}
		flush()
		runes = append(runes, rune(v))
	}
	flush()
	return string(runes), nil
}

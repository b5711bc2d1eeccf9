package codec

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const baudotTable = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// baudot upper-cases the input and maps every letter of the table to the
// character at index+'A'. Characters outside the table pass through, so the
// transformation is its own inverse on its output.
func baudot(in string) (string, error) {
	upper := cases.Upper(language.Und).String(in)
	return strings.Map(func(r rune) rune {
		if i := strings.IndexRune(baudotTable, r); i != -1 {
			return rune(i + 'A')
		}
		return r
	}, upper), nil
}

package codec

import "strings"

const bootstringAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// bootstringCodec replaces every character with the pair (successor, self)
// over a 64 character alphabet. The successor of '_' wraps to 'A'.
type bootstringCodec struct{}

func (bootstringCodec) Encode(in string) (string, error) {
	var b strings.Builder
	b.Grow(len(in) * 2)
	for pos, r := range in {
		i := strings.IndexRune(bootstringAlphabet, r)
		if i == -1 {
			return "", unsupportedCharacter(r, pos)
		}
		b.WriteByte(bootstringAlphabet[(i+1)%len(bootstringAlphabet)])
		b.WriteByte(bootstringAlphabet[i])
	}
	return b.String(), nil
}

func (bootstringCodec) Decode(in string) (string, error) {
	// Validate the whole input first so an odd length never hides a bad
	// character.
	for pos, r := range in {
		if strings.IndexRune(bootstringAlphabet, r) == -1 {
			return "", unsupportedCharacter(r, pos)
		}
	}
	if len(in)%2 != 0 {
		return "", invalidInput(nil, "length %d is odd, input must consist of character pairs", len(in))
	}

	n := len(bootstringAlphabet)
	var b strings.Builder
	b.Grow(len(in) / 2)
	for pos := 0; pos < len(in); pos += 2 {
		hi := strings.IndexByte(bootstringAlphabet, in[pos])
		lo := strings.IndexByte(bootstringAlphabet, in[pos+1])
		if diff := (hi - lo + n) % n; diff != 1 {
			return "", invalidInput(nil, "pair %q at position %d has index difference %d, want 1", in[pos:pos+2], pos, diff)
		}
		b.WriteByte(bootstringAlphabet[lo])
	}
	return b.String(), nil
}

package codec

import (
	"strings"

	"golang.org/x/net/idna"
)

const acePrefix = "xn--"

// punycodeCodec converts between Unicode and the ASCII compatible encoding
// of domain names. Labels that are already ASCII are left alone; others get
// the xn-- prefix. The profile decides which characters are allowed.
type punycodeCodec struct {
	profile *idna.Profile
}

func (p punycodeCodec) Encode(in string) (string, error) {
	// An input label that already carries the prefix would decode to
	// different text.
	for _, label := range strings.Split(in, ".") {
		if strings.HasPrefix(strings.ToLower(label), acePrefix) {
			return "", invalidInput(nil, "label %q is already punycode", label)
		}
	}
	out, err := p.profile.ToASCII(in)
	if err != nil {
		return "", invalidInput(err, "cannot punycode %q: %v", in, err)
	}
	return out, nil
}

func (p punycodeCodec) Decode(in string) (string, error) {
	out, err := p.profile.ToUnicode(in)
	if err != nil {
		return "", invalidInput(err, "malformed punycode %q: %v", in, err)
	}
	return out, nil
}

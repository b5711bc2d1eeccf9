package codec

import "golang.org/x/net/idna"

// registry is indexed by Scheme. Every scheme has an entry; the array length
// makes a missing one a compile error.
var registry = [numSchemes]Codec{
	Base32: base64Codec{},
	Base64: base64Codec{},
	// Ascii85 escapes and immediately unescapes the text before framing it,
	// which leaves plain base64 of the UTF-8 bytes.
	Ascii85:          base64Codec{},
	Baudot:           SelfInverse(baudot),
	UnicodeCodePoint: unicodeCodec{},
	URL:              urlCodec{},
	Punycode:         punycodeCodec{profile: idna.Registration},
	Bootstring:       bootstringCodec{},
	Integer:          SelfInverse(integer),
}

// Lookup returns the codec registered for s. ok is false only for values
// outside the declared set, which ParseScheme never produces.
func Lookup(s Scheme) (c Codec, ok bool) {
	if !s.Valid() {
		return nil, false
	}
	return registry[s], true
}

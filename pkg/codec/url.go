package codec

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// urlCodec escapes like URI component escaping: the RFC 3986 unreserved set
// plus the marks ! ' ( ) * stay literal.
type urlCodec struct{}

// componentMarks undoes what QueryEscape does beyond component escaping.
// QueryEscape writes a space as '+'; a literal '+' is already %2B by then.
var componentMarks = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func (urlCodec) Encode(in string) (string, error) {
	return componentMarks.Replace(url.QueryEscape(in)), nil
}

func (urlCodec) Decode(in string) (string, error) {
	out, err := url.PathUnescape(in)
	if err != nil {
		return "", invalidInput(err, "malformed percent encoding: %v", err)
	}
	if !utf8.ValidString(out) {
		return "", invalidInput(nil, "percent-decoded bytes are not valid UTF-8")
	}
	return out, nil
}

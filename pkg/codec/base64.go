package codec

import (
	"encoding/base64"
	"unicode/utf8"
)

// base64Codec is registered for Base64, Base32 and Ascii85. The other two
// schemes have always produced standard base64 output and keep doing so.
type base64Codec struct{}

func (base64Codec) Encode(in string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(in)), nil
}

func (base64Codec) Decode(in string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(in)
	if err != nil {
		return "", invalidInput(err, "malformed base64: %v", err)
	}
	if !utf8.Valid(b) {
		return "", invalidInput(nil, "decoded bytes are not valid UTF-8")
	}
	return string(b), nil
}

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecs(t *testing.T) {
	tests := []struct {
		name      string
		scheme    Scheme
		direction Direction
		in        string
		want      string
		wantKind  Kind
	}{
		{"base64 encode", Base64, Encode, "hello", "aGVsbG8=", 0},
		{"base64 encode utf8", Base64, Encode, "héllo", "aMOpbGxv", 0},
		{"base64 encode empty", Base64, Encode, "", "", 0},
		{"base64 decode", Base64, Decode, "aGVsbG8=", "hello", 0},
		{"base64 decode empty", Base64, Decode, "", "", 0},
		{"base64 decode bad alphabet", Base64, Decode, "aGV*bG8=", "", InvalidInput},
		{"base64 decode bad padding", Base64, Decode, "aGVsbG8", "", InvalidInput},
		{"base64 decode not utf8", Base64, Decode, "//4=", "", InvalidInput},

		{"base32 is base64", Base32, Encode, "hello", "aGVsbG8=", 0},
		{"base32 decode", Base32, Decode, "aMOpbGxv", "héllo", 0},
		{"base32 decode malformed", Base32, Decode, "!!!", "", InvalidInput},

		{"ascii85 encode", Ascii85, Encode, "a b", "YSBi", 0},
		{"ascii85 encode utf8", Ascii85, Encode, "héllo", "aMOpbGxv", 0},
		{"ascii85 decode", Ascii85, Decode, "aMOpbGxv", "héllo", 0},
		{"ascii85 decode malformed", Ascii85, Decode, "not base64!", "", InvalidInput},
		{"ascii85 decode not utf8", Ascii85, Decode, "//4=", "", InvalidInput},

		{"baudot encode", Baudot, Encode, "Hello, World!", "HELLO, WORLD!", 0},
		{"baudot encode special casing", Baudot, Encode, "straße", "STRASSE", 0},
		{"baudot decode", Baudot, Decode, "hello 123", "HELLO 123", 0},
		{"baudot empty", Baudot, Encode, "", "", 0},

		{"unicode encode", UnicodeCodePoint, Encode, "Hi", `\u0048\u0069`, 0},
		{"unicode encode astral", UnicodeCodePoint, Encode, "\U0001F600", `\ud83d\ude00`, 0},
		{"unicode decode", UnicodeCodePoint, Decode, `\u0048\u0069`, "Hi", 0},
		{"unicode decode empty group", UnicodeCodePoint, Decode, `\u0048\u\u0069`, "Hi", 0},
		{"unicode decode surrogates", UnicodeCodePoint, Decode, `\ud83d\ude00`, "\U0001F600", 0},
		{"unicode decode long group", UnicodeCodePoint, Decode, `\u1f600`, "\U0001F600", 0},
		{"unicode decode bad hex", UnicodeCodePoint, Decode, `\u00zz`, "", InvalidInput},
		{"unicode decode out of range", UnicodeCodePoint, Decode, `\u110000`, "", InvalidInput},

		{"url encode space", URL, Encode, "a b", "a%20b", 0},
		{"url encode reserved", URL, Encode, "a+b/c?d=é", "a%2Bb%2Fc%3Fd%3D%C3%A9", 0},
		{"url encode unreserved", URL, Encode, "AZaz09-._~", "AZaz09-._~", 0},
		{"url encode keeps marks", URL, Encode, "it's (fine)!*", "it's%20(fine)!*", 0},
		{"url decode marks", URL, Decode, "it's%20(fine)!*", "it's (fine)!*", 0},
		{"url decode escaped marks", URL, Decode, "%21%27%28%29%2A", "!'()*", 0},
		{"url decode", URL, Decode, "a%20b", "a b", 0},
		{"url decode keeps plus", URL, Decode, "a+b", "a+b", 0},
		{"url decode malformed", URL, Decode, "100%", "", InvalidInput},
		{"url decode bad hex", URL, Decode, "%zz", "", InvalidInput},
		{"url decode not utf8", URL, Decode, "%ff", "", InvalidInput},

		{"punycode encode", Punycode, Encode, "bücher", "xn--bcher-kva", 0},
		{"punycode encode domain", Punycode, Encode, "münchen.de", "xn--mnchen-3ya.de", 0},
		{"punycode encode ascii", Punycode, Encode, "example", "example", 0},
		{"punycode decode", Punycode, Decode, "xn--bcher-kva", "bücher", 0},
		{"punycode decode malformed", Punycode, Decode, "xn--ab!", "", InvalidInput},
		{"punycode encode ace label", Punycode, Encode, "xn--bcher-kva", "", InvalidInput},
		{"punycode encode ace label in domain", Punycode, Encode, "www.XN--bcher-kva.de", "", InvalidInput},
		{"punycode encode space", Punycode, Encode, "a b", "", InvalidInput},
		{"punycode encode control", Punycode, Encode, "a\x00b", "", InvalidInput},
		{"punycode encode symbol", Punycode, Encode, "ex!ample", "", InvalidInput},
		{"punycode decode space", Punycode, Decode, "a b", "", InvalidInput},

		{"bootstring encode", Bootstring, Encode, "Ab", "BAcb", 0},
		{"bootstring encode wraps", Bootstring, Encode, "_", "A_", 0},
		{"bootstring encode space", Bootstring, Encode, "a b", "", UnsupportedCharacter},
		{"bootstring encode non ascii", Bootstring, Encode, "é", "", UnsupportedCharacter},
		{"bootstring decode", Bootstring, Decode, "BAcb", "Ab", 0},
		{"bootstring decode wraps", Bootstring, Decode, "A_", "_", 0},
		{"bootstring decode odd length", Bootstring, Decode, "BAc", "", InvalidInput},
		{"bootstring decode bad pair", Bootstring, Decode, "AB", "", InvalidInput},
		{"bootstring decode bad character", Bootstring, Decode, "B A", "", UnsupportedCharacter},

		{"integer encode", Integer, Encode, "42", "42", 0},
		{"integer normalizes", Integer, Encode, " -007 ", "-7", 0},
		{"integer plus sign", Integer, Decode, "+5", "5", 0},
		{"integer max", Integer, Decode, "9223372036854775807", "9223372036854775807", 0},
		{"integer not a number", Integer, Encode, "abc", "", InvalidInput},
		{"integer trailing garbage", Integer, Encode, "42abc", "", InvalidInput},
		{"integer empty", Integer, Decode, "", "", InvalidInput},
		{"integer overflow", Integer, Encode, "9223372036854775808", "", Overflow},
		{"integer underflow", Integer, Decode, "-9223372036854775809", "", Overflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Dispatch(tt.in, tt.scheme, tt.direction)
			if tt.wantKind != 0 {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.wantKind)
				require.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, res.Payload)
			require.Equal(t, tt.scheme, res.Scheme)
			require.Equal(t, tt.direction, res.Direction)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := map[Scheme][]string{
		Base32:           {"", "hello", "héllo wörld", "😀"},
		Base64:           {"", "hello", "héllo wörld", "😀"},
		Ascii85:          {"", "a b", "100% ~ tilde", "日本語", "it's (fine)!*"},
		Baudot:           {"", "HELLO", "ABC-123"},
		UnicodeCodePoint: {"", "Hi", "héllo", "😀 and ü"},
		URL:              {"", "a b", "a+b&c=d/e?f#g", "ünïcode", "it's (fine)!*", "%21"},
		Punycode:         {"example", "bücher", "日本語.jp", "münchen.de"},
		Bootstring:       {"", "Ab", "HelloWorld-_09"},
		Integer:          {"0", "42", "-9223372036854775808"},
	}

	for _, s := range Schemes() {
		for _, in := range inputs[s] {
			enc, err := Dispatch(in, s, Encode)
			require.NoError(t, err, "%s encode %q", s, in)
			dec, err := Dispatch(enc.Payload, s, Decode)
			require.NoError(t, err, "%s decode %q", s, enc.Payload)
			require.Equal(t, in, dec.Payload, "%s round trip", s)
		}
	}
}

func TestEveryCodecIsConcurrencySafe(t *testing.T) {
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for _, s := range Schemes() {
				_, _ = Dispatch("Concurrent-42", s, Encode)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

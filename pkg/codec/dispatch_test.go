package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunInteger(t *testing.T) {
	res, err := Run("42", "integer", "encode")
	require.NoError(t, err)
	require.Equal(t, "42", res.Payload)
	require.Equal(t, "Integer Encoded: 42", res.String())

	_, err = Run("abc", "integer", "encode")
	require.ErrorIs(t, err, InvalidInput)
	require.EqualError(t, err, `error encoding data with Integer: invalid input: "abc" is not a base-10 integer`)
}

func TestRunURL(t *testing.T) {
	enc, err := Run("a b", "url", "encode")
	require.NoError(t, err)
	require.Equal(t, "a%20b", enc.Payload)
	require.Equal(t, "URL Encoded: a%20b", enc.String())

	dec, err := Run(enc.Payload, "url", "decode")
	require.NoError(t, err)
	require.Equal(t, "a b", dec.Payload)
	require.Equal(t, "URL Decoded: a b", dec.String())
}

func TestRunBootstringSpace(t *testing.T) {
	_, err := Run("a b", "bootstring", "encode")
	require.ErrorIs(t, err, UnsupportedCharacter)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, Bootstring, cerr.Scheme)
	require.Equal(t, Encode, cerr.Direction)
	require.Contains(t, cerr.Error(), "position 1")
}

func TestRunBase64Empty(t *testing.T) {
	enc, err := Run("", "base64", "encode")
	require.NoError(t, err)
	require.Equal(t, "", enc.Payload)

	dec, err := Run(enc.Payload, "base64", "decode")
	require.NoError(t, err)
	require.Equal(t, "", dec.Payload)
}

func TestRunUnknownScheme(t *testing.T) {
	for _, direction := range []string{"encode", "decode", "sideways", ""} {
		_, err := Run("data", "unrecognized-scheme", direction)
		require.ErrorIs(t, err, UnknownScheme, "direction %q", direction)
		require.Equal(t, UnknownScheme, KindOf(err))
	}
}

func TestRunSchemeIsCaseSensitive(t *testing.T) {
	_, err := Run("data", "Base64", "encode")
	require.ErrorIs(t, err, UnknownScheme)
}

func TestRunInvalidDirection(t *testing.T) {
	_, err := Run("data", "base64", "sideways")
	require.ErrorIs(t, err, InvalidInput)
	require.ErrorContains(t, err, "invalid operation type")
}

func TestDispatchOutOfRangeScheme(t *testing.T) {
	_, err := Dispatch("data", Scheme(200), Encode)
	require.ErrorIs(t, err, UnknownScheme)
}

func TestRegistryIsTotal(t *testing.T) {
	require.Len(t, Schemes(), 9)
	for _, s := range Schemes() {
		c, ok := Lookup(s)
		require.True(t, ok, s.String())
		require.NotNil(t, c, s.String())
	}

	c, ok := Lookup(Scheme(200))
	require.False(t, ok)
	require.Nil(t, c)
}

func TestParseSchemeRoundTrip(t *testing.T) {
	for _, name := range SchemeNames() {
		s, err := ParseScheme(name)
		require.NoError(t, err)
		require.Equal(t, name, s.String())
	}
}

func TestSchemeFlagValue(t *testing.T) {
	var s Scheme
	require.NoError(t, s.Set("punycode"))
	require.Equal(t, Punycode, s)
	require.Equal(t, "Scheme", s.Type())
	require.ErrorIs(t, s.Set("rot13"), UnknownScheme)

	var d Direction
	require.NoError(t, d.Set("decode"))
	require.Equal(t, Decode, d)
	require.Error(t, d.Set("both"))
}

func TestResultJSON(t *testing.T) {
	res, err := Dispatch("Ab", Bootstring, Encode)
	require.NoError(t, err)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{"scheme":"bootstring","direction":"encode","payload":"BAcb"}`, string(b))

	var back Result
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, res, back)
}

func TestForeignErrorsAreNormalized(t *testing.T) {
	err := scope(fmt.Errorf("boom"), URL, Decode)
	require.Equal(t, InvalidInput, err.Kind)
	require.EqualError(t, err, "error decoding data with URL: invalid input: boom")
}

func TestScopeDoesNotMutateOriginal(t *testing.T) {
	orig := &Error{Kind: Overflow, Detail: "too big"}
	scoped := scope(orig, Integer, Encode)
	require.Equal(t, "overflow: too big", orig.Error())
	require.Equal(t, "error encoding data with Integer: overflow: too big", scoped.Error())
}

// Package codec implements the text transformation schemes and the
// dispatcher that selects and runs them. Every codec is a pure function of
// its input and safe for concurrent use.
package codec

// Encoder turns user-provided text into the scheme's encoded form.
type Encoder interface {
	Encode(in string) (string, error)
}

// Decoder turns the scheme's encoded form back into text.
type Decoder interface {
	Decode(in string) (string, error)
}

// Codec implements both directions of a scheme.
type Codec interface {
	Encoder
	Decoder
}

// CodecFuncs adapts a pair of plain functions to the Codec interface.
type CodecFuncs struct {
	EncodeFunc func(string) (string, error)
	DecodeFunc func(string) (string, error)
}

func (c CodecFuncs) Encode(in string) (string, error) {
	return c.EncodeFunc(in)
}

func (c CodecFuncs) Decode(in string) (string, error) {
	return c.DecodeFunc(in)
}

// SelfInverse builds a Codec whose encode and decode are the same function.
func SelfInverse(fn func(string) (string, error)) Codec {
	return CodecFuncs{EncodeFunc: fn, DecodeFunc: fn}
}

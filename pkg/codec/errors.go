package codec

import (
	"errors"
	"fmt"
)

// Kind classifies a codec failure. A Kind is itself an error so callers can
// branch with errors.Is(err, codec.Overflow).
type Kind uint8

const (
	InvalidInput Kind = iota + 1
	UnsupportedCharacter
	UnknownScheme
	Overflow
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case UnsupportedCharacter:
		return "unsupported character"
	case UnknownScheme:
		return "unknown scheme"
	case Overflow:
		return "overflow"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) Error() string {
	return k.String()
}

// Error is the only error type returned by Dispatch and Run.
type Error struct {
	Kind   Kind
	Detail string
	// Err is the underlying library error, if any.
	Err error

	// Scheme and Direction are set once the error has passed through the
	// dispatcher.
	Scheme    Scheme
	Direction Direction
	scoped    bool
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if !e.scoped {
		return msg
	}
	verb := "encoding"
	if e.Direction == Decode {
		verb = "decoding"
	}
	return fmt.Sprintf("error %s data with %s: %s", verb, e.Scheme.Label(), msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a bare Kind target.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of a codec error, or 0 if err is not one.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return 0
}

func invalidInput(err error, format string, args ...any) *Error {
	return &Error{Kind: InvalidInput, Detail: fmt.Sprintf(format, args...), Err: err}
}

func unsupportedCharacter(r rune, pos int) *Error {
	return &Error{Kind: UnsupportedCharacter, Detail: fmt.Sprintf("character %q at position %d is not in the alphabet", r, pos)}
}

// scope stamps err with the operation it came from. Errors that are not
// *Error are normalized to InvalidInput.
func scope(err error, s Scheme, d Direction) *Error {
	var cerr *Error
	if errors.As(err, &cerr) {
		cp := *cerr
		cerr = &cp
	} else {
		cerr = &Error{Kind: InvalidInput, Detail: err.Error(), Err: err}
	}
	cerr.Scheme = s
	cerr.Direction = d
	cerr.scoped = true
	return cerr
}

package codec

import "fmt"

// Result is a successful transformation.
type Result struct {
	Scheme    Scheme    `json:"scheme"`
	Direction Direction `json:"direction"`
	Payload   string    `json:"payload"`
}

// String renders the display line, e.g. "Integer Encoded: 42".
func (r Result) String() string {
	return fmt.Sprintf("%s %s: %s", r.Scheme.Label(), r.Direction.Past(), r.Payload)
}

// Dispatch runs one direction of the codec registered for s. Any failure is
// returned as a *Error carrying the scheme and direction.
func Dispatch(data string, s Scheme, d Direction) (Result, error) {
	c, ok := Lookup(s)
	if !ok {
		return Result{}, &Error{Kind: UnknownScheme, Detail: s.String()}
	}

	var (
		out string
		err error
	)
	switch d {
	case Encode:
		out, err = c.Encode(data)
	case Decode:
		out, err = c.Decode(data)
	default:
		return Result{}, scope(&Error{Kind: InvalidInput, Detail: "invalid operation type " + d.String()}, s, d)
	}
	if err != nil {
		return Result{}, scope(err, s, d)
	}
	return Result{Scheme: s, Direction: d, Payload: out}, nil
}

// Run is the string-typed entry point for front ends. The scheme is resolved
// before the direction, so an unknown scheme is always reported as such.
func Run(data, scheme, direction string) (Result, error) {
	s, err := ParseScheme(scheme)
	if err != nil {
		return Result{}, err
	}
	d, err := ParseDirection(direction)
	if err != nil {
		return Result{}, err
	}
	return Dispatch(data, s, d)
}

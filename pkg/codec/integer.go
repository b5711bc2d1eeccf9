package codec

import (
	"errors"
	"strconv"
	"strings"
)

// integer normalizes a base-10 signed 64-bit integer to its canonical form.
func integer(in string) (string, error) {
	s := strings.TrimSpace(in)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return "", &Error{Kind: Overflow, Detail: "value " + strconv.Quote(s) + " does not fit in a 64-bit signed integer", Err: err}
		}
		return "", invalidInput(err, "%q is not a base-10 integer", s)
	}
	return strconv.FormatInt(n, 10), nil
}

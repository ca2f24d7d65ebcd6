package analysis

import (
	"errors"
	"fmt"
)

// InputError reports a malformed job record. It is the only error class
// Analyze propagates to callers; every provider-side problem is folded
// into the result breakdown instead.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid job record: field %q %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid job record: %s", e.Message)
}

// IsInputError reports whether err is (or wraps) an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

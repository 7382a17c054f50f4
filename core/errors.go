package core

import "errors"

// InvariantError reports an internal state that cannot happen in a
// correct program, such as an unknown event tag. Tasks return it instead
// of recovering; the robot then stops all tasks and logs it.
type InvariantError struct {
	Where  string
	Detail string
}

func (e *InvariantError) Error() string {
	return "invariant violated in " + e.Where + ": " + e.Detail
}

// Invariant builds an InvariantError
func Invariant(where, detail string) *InvariantError {
	return &InvariantError{Where: where, Detail: detail}
}

// InvariantValue builds an InvariantError carrying an offending value
func InvariantValue(where, detail string, value int) *InvariantError {
	return &InvariantError{Where: where, Detail: detail + " " + itoa(value)}
}

// IsInvariant reports whether err is or wraps an InvariantError
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

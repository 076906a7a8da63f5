package models

import "fmt"

// ValidationError marks defects in caller-supplied input. Handlers may
// echo its message back to the caller; any other error is internal and
// stays in the server log.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError.
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

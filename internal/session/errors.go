package session

import (
	"errors"
	"fmt"
)

// CommandError is the single error kind raised by a Session. It carries a
// human-readable message and, for storage or launch failures, the
// underlying cause.
type CommandError struct {
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	switch {
	case e.Message == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func newCommandError(format string, args ...interface{}) *CommandError {
	return &CommandError{Message: fmt.Sprintf(format, args...)}
}

func wrapCommandError(err error, format string, args ...interface{}) *CommandError {
	return &CommandError{Message: fmt.Sprintf(format, args...), Err: err}
}

// IsCommandError reports whether err is, or wraps, a *CommandError.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}

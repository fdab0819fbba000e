package describe

import (
	"errors"
	"fmt"
)

// Sentinel errors for description generation.
var (
	ErrRateLimited   = errors.New("describe: rate limited by server")
	ErrBadRequest    = errors.New("describe: bad request")
	ErrServer        = errors.New("describe: server error")
	ErrUnauthorized  = errors.New("describe: invalid API key")
	ErrEmptyResponse = errors.New("describe: model returned no content")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "describeLandmark"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("describe %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op string, err error) error {
	return &Error{Op: op, Err: err}
}

package vision

import (
	"errors"
	"fmt"
)

// Sentinel errors for Vision API operations.
var (
	ErrNoLandmark  = errors.New("vision: no landmark detected")
	ErrRateLimited = errors.New("vision: rate limited by server")
	ErrBadRequest  = errors.New("vision: bad request")
	ErrServer      = errors.New("vision: server error")
	ErrEmptyImage  = errors.New("vision: empty image data")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "detectLandmark"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("vision %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op string, err error) error {
	return &Error{Op: op, Err: err}
}

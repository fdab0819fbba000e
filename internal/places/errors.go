package places

import (
	"errors"
	"fmt"
)

// Sentinel errors for Maps API operations.
var (
	ErrLocationNotFound = errors.New("places: location not found")
	ErrRateLimited      = errors.New("places: rate limited by server")
	ErrBadRequest       = errors.New("places: bad request")
	ErrServer           = errors.New("places: server error")
	ErrRequestDenied    = errors.New("places: request denied")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op    string // Operation: "geocode", "nearbySearch"
	Query string // If applicable
	Err   error
}

func (e *Error) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("places %s [%s]: %v", e.Op, e.Query, e.Err)
	}
	return fmt.Sprintf("places %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, query string, err error) error {
	return &Error{Op: op, Query: query, Err: err}
}

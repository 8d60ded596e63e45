package domain

import (
	"errors"
	"fmt"
)

// Row validation failures. A row failing any of these is dropped at load time.
var (
	ErrMissingField = errors.New("missing required field")
	ErrOutOfRange   = errors.New("value out of range")
	ErrBadValue     = errors.New("unparseable value")
)

// ErrInvalidParams reports analysis parameters outside their accepted range.
var ErrInvalidParams = errors.New("invalid analysis parameters")

// LoadError reports a source that could not be read at all. It is the only
// failure that stops a run; individual bad rows never produce one.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

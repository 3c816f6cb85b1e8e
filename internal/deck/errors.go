package deck

import (
	"errors"
	"fmt"
)

// FetchError is returned when a deck source cannot be retrieved.
type FetchError struct {
	Source     string
	StatusCode int // HTTP status, 0 for transport or file errors
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is returned when a payload is not a sequence of entries.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

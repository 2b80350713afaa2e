package model

import (
	"errors"
	"fmt"
)

// ErrInvalidIdentifier is returned when a source identifier is missing a
// required part or has the wrong shape for its strategy.
var ErrInvalidIdentifier = errors.New("invalid source identifier")

// HTTPError carries the status and request line of a failed HTTP exchange.
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d %s %s: %v", e.StatusCode, e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("HTTP %d %s %s", e.StatusCode, e.Method, e.URL)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

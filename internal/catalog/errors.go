package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the catalog service could not be reached or
	// answered with a transport-level failure. Distinct from a "no result"
	// outcome, which is a nil value without an error.
	ErrUnavailable = errors.New("catalog unavailable")
	// ErrUnauthorized indicates the catalog rejected our access token
	ErrUnauthorized = errors.New("catalog access unauthorized")
)

// StatusError is returned for response statuses that have no defined
// handling. The boundary escalates these rather than guessing.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog returned unexpected status %d", e.Status)
}

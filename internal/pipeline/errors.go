package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProfileNotFound is returned when a profile has no versions on disk
var ErrProfileNotFound = errors.New("profile not found")

// PersistenceError is returned when a version cannot be written or removed.
// It aborts the current generation.
type PersistenceError struct {
	Path    string
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Path)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// RequestError is returned when a request fails field validation
type RequestError struct {
	Fields []string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", strings.Join(e.Fields, "; "))
}

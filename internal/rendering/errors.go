// Package rendering converts a canonical markdown document into concrete
// output artifacts. Each format owns an ordered list of strategies that are
// tried until one writes a file.
package rendering

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBackendUnavailable is returned by a strategy whose underlying library is
// not configured. The renderer moves on to the next strategy.
var ErrBackendUnavailable = errors.New("rendering backend unavailable")

// TemplateError represents an error parsing or executing the HTML page template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// Attempt records one failed strategy
type Attempt struct {
	Strategy string
	Err      error
}

// RenderError is returned when every strategy of a format failed
type RenderError struct {
	Format   Format
	Message  string
	Attempts []Attempt
	Cause    error
}

func (e *RenderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "render error: %s: %s", e.Format, e.Message)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; %s: %v", a.Strategy, a.Err)
	}
	if e.Cause != nil && len(e.Attempts) == 0 {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

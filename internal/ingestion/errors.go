package ingestion

import (
	"fmt"
	"strings"
)

// UnsupportedFormatError is returned when a file extension is not in the supported set
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("unsupported file format for %s: no extension", e.Path)
	}
	return fmt.Sprintf("unsupported file format %q for %s", e.Extension, e.Path)
}

// NotFoundError is returned when an input path does not exist
type NotFoundError struct {
	Path  string
	Cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// ExtractionError is returned when a format-specific extractor fails on a readable file
type ExtractionError struct {
	Path   string
	Format string
	Cause  error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to extract %s text from %s: %v", e.Format, e.Path, e.Cause)
	}
	return fmt.Sprintf("failed to extract %s text from %s", e.Format, e.Path)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ViolationKind classifies a batch validation failure
type ViolationKind string

const (
	ViolationUnsupported ViolationKind = "unsupported_format"
	ViolationMissing     ViolationKind = "missing_file"
	ViolationOversized   ViolationKind = "oversized_file"
	ViolationTooMany     ViolationKind = "too_many_files"
)

// Violation describes one problem found during upfront validation
type Violation struct {
	Path    string        `json:"path,omitempty"`
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

// InputValidationError aggregates every violation found in a batch
type InputValidationError struct {
	Violations []Violation
}

func (e *InputValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "input validation failed"
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("input validation failed with %d violation(s): %s", len(e.Violations), strings.Join(msgs, "; "))
}

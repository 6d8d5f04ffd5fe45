package synthesis

import (
	"errors"
	"fmt"
)

var (
	// ErrNoClient is returned by operations that cannot run without a model
	ErrNoClient = errors.New("no generative model client configured")
	// ErrNoContent is returned when there is no source text to send
	ErrNoContent = errors.New("no source text to synthesize from")
	// ErrEmptyResponse is returned when the model answers with blank text
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// SynthesisError is returned when a fatal synthesis stage fails
type SynthesisError struct {
	Op    string
	Cause error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis %s failed: %v", e.Op, e.Cause)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

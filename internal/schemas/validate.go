// Package schemas provides JSON Schema validation for the documents the
// pipeline persists. The manifest schema is embedded at compile time.
package schemas

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed manifest.schema.json
var manifestSchema string

var (
	manifestOnce     sync.Once
	compiledManifest *gojsonschema.Schema
	manifestLoadErr  error
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// manifest compiles the embedded schema on first use
func manifest() (*gojsonschema.Schema, error) {
	manifestOnce.Do(func() {
		compiledManifest, manifestLoadErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(manifestSchema))
		if manifestLoadErr != nil {
			manifestLoadErr = &SchemaLoadError{Path: "manifest.schema.json", Message: "failed to compile", Cause: manifestLoadErr}
		}
	})
	return compiledManifest, manifestLoadErr
}

// ValidateManifest validates encoded metadata.json content
func ValidateManifest(data []byte) error {
	schema, err := manifest()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// ValidateManifestFile validates a metadata.json file on disk
func ValidateManifestFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("manifest not found: %s", path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ValidateManifest(data)
}

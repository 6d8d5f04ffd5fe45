package templating

import "fmt"

// TemplateError represents a failure to load or store a template file
type TemplateError struct {
	Name    string
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %s: %v", e.Message, e.Name, e.Cause)
	}
	return fmt.Sprintf("template error: %s: %s", e.Message, e.Name)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

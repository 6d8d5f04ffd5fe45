package pipeline

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/easycv/internal/rendering"
	"github.com/jonathan/easycv/internal/types"
)

// GenerateRequest holds the inputs of a generate operation
type GenerateRequest struct {
	ProfileName    string             `json:"profile_name" validate:"required,max=100,profilename"`
	DocumentPaths  []string           `json:"document_paths" validate:"required,min=1,dive,required"`
	RoleText       string             `json:"role_text" validate:"required"` // literal text or a path to a file holding it
	TemplatePath   string             `json:"template_path,omitempty"`
	StyleReference string             `json:"style_reference,omitempty"` // literal text or a path to a reference resume
	Formats        []rendering.Format `json:"formats,omitempty" validate:"omitempty,dive,oneof=markdown word html pdf"`
	Language       types.Language     `json:"language,omitempty" validate:"omitempty,oneof=english chinese bilingual"`
}

// UpdateRequest holds the inputs of an update operation. The previous
// version is either a markdown file (PreviousPath) or the latest version
// of ProfileName.
type UpdateRequest struct {
	ProfileName   string             `json:"profile_name,omitempty" validate:"omitempty,max=100,profilename"`
	PreviousPath  string             `json:"previous_path,omitempty"`
	DocumentPaths []string           `json:"document_paths" validate:"required,min=1,dive,required"`
	RoleText      string             `json:"role_text,omitempty"` // optional new target role
	Formats       []rendering.Format `json:"formats,omitempty" validate:"omitempty,dive,oneof=markdown word html pdf"`
	Language      types.Language     `json:"language,omitempty" validate:"omitempty,oneof=english chinese bilingual"`
}

// profileNamePattern keeps profile names usable as a single path segment
var profileNamePattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ._-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("profilename", func(fl validator.FieldLevel) bool {
		return profileNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateRequest runs struct validation and converts failures to a *RequestError
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, describeFieldError(fe))
	}
	return &RequestError{Fields: fields}
}

// ValidateProfileName reports whether name can be used as a profile name
func ValidateProfileName(name string) error {
	if err := validate.Var(name, "required,max=100,profilename"); err != nil {
		return &RequestError{Fields: []string{fmt.Sprintf("invalid profile name %q", name)}}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' is required", field)
	case "min":
		return fmt.Sprintf("'%s' needs at least %s item(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("'%s' must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "profilename":
		return fmt.Sprintf("'%s' must start with a letter or digit and contain only letters, digits, spaces, '.', '_' or '-'", field)
	default:
		return fmt.Sprintf("'%s' failed '%s'", field, fe.Tag())
	}
}

// Package templating fills resume templates containing {{identifier}} placeholders.
package templating

import (
	"regexp"
	"strings"

	"github.com/jonathan/easycv/internal/synthesis"
	"github.com/jonathan/easycv/internal/types"
)

// MergeSeparator is inserted between two merged templates
const MergeSeparator = "\n\n<!-- Merged Content -->\n\n"

// RecognizedSections are the section keywords looked for by Validate
var RecognizedSections = []string{"experience", "education", "skills", "contact", "summary"}

var placeholderPattern = regexp.MustCompile(`\{\{([\p{L}\p{N}_]+)\}\}`)

// Result is the outcome of applying a template
type Result struct {
	Text       string   `json:"text"`
	Unresolved []string `json:"unresolved,omitempty"`
}

// Validation reports the structure of a template
type Validation struct {
	Variables       []string `json:"variables"`
	VariableCount   int      `json:"variable_count"`
	FoundSections   []string `json:"found_sections"`
	MissingSections []string `json:"missing_sections"`
	TotalLines      int      `json:"total_lines"`
	Valid           bool     `json:"is_valid"`
}

// Apply substitutes every {{key}} present in vars in a single pass. Unknown
// placeholders stay verbatim and are reported once each, in order of appearance.
func Apply(tmpl string, vars map[string]string) Result {
	var unresolved []string
	seen := make(map[string]bool)

	text := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[2 : len(match)-2]
		if value, ok := vars[key]; ok {
			return value
		}
		if !seen[key] {
			seen[key] = true
			unresolved = append(unresolved, key)
		}
		return match
	})

	return Result{Text: text, Unresolved: unresolved}
}

// Variables returns the placeholder names in order of appearance, repeats included
func Variables(tmpl string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(tmpl, -1)
	vars := make([]string, 0, len(matches))
	for _, m := range matches {
		vars = append(vars, m[1])
	}
	return vars
}

// Validate checks which recognized sections appear (case-insensitively) and
// counts placeholders. A template is valid with at least one of each.
func Validate(tmpl string) Validation {
	vars := Variables(tmpl)
	lower := strings.ToLower(tmpl)

	v := Validation{
		Variables:       vars,
		VariableCount:   len(vars),
		FoundSections:   []string{},
		MissingSections: []string{},
		TotalLines:      countLines(tmpl),
	}
	for _, section := range RecognizedSections {
		if strings.Contains(lower, section) {
			v.FoundSections = append(v.FoundSections, section)
		} else {
			v.MissingSections = append(v.MissingSections, section)
		}
	}
	v.Valid = v.VariableCount > 0 && len(v.FoundSections) > 0
	return v
}

// Merge appends secondary to primary behind a visible marker
func Merge(primary, secondary string) string {
	return primary + MergeSeparator + secondary
}

// ContentVariables flattens a structured record into template variables
func ContentVariables(content types.StructuredContent) map[string]string {
	return content.ToMap()
}

// DefaultTemplate returns the built-in layout for a language, one heading per field
func DefaultTemplate(lang types.Language) string {
	var sb strings.Builder
	sb.WriteString("# {{" + types.FieldName + "}}\n")
	for _, f := range types.ContentFields[1:] {
		sb.WriteString("\n## " + synthesis.Heading(lang, f) + "\n{{" + f + "}}\n")
	}
	return sb.String()
}

// countLines counts lines; a trailing newline does not start a new one.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// Package llm - extractor.go describes JSON output shapes requested from the model.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the JSON object a prompt asks the model to return
type ExtractionSchema struct {
	Name        string
	Description string
	Fields      []SchemaField
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool
}

// FieldNames returns the schema's JSON field names in order
func (s ExtractionSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// BuildOutputInstructions renders the "return only this JSON" block for a schema.
func BuildOutputInstructions(schema ExtractionSchema) string {
	var sb strings.Builder

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Every field must be a single string; use markdown bullets inside the string for lists.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")

	return sb.String()
}

// ResumeContentSchema returns the nine-field structured resume record.
func ResumeContentSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "ResumeContent",
		Description: "Structured resume content tailored to a target role.",
		Fields: []SchemaField{
			{Name: "name", Description: "Full name of the candidate", Required: true},
			{Name: "contact", Description: "Email, phone, location and profile links", Required: true},
			{Name: "summary", Description: "Two to four sentence professional summary aimed at the role", Required: true},
			{Name: "experience", Description: "Work history, most relevant first, with quantified achievements", Required: true},
			{Name: "education", Description: "Degrees, institutions and dates", Required: true},
			{Name: "skills", Description: "Technical and professional skills relevant to the role", Required: true},
			{Name: "projects", Description: "Notable projects with outcomes", Required: true},
			{Name: "certifications", Description: "Certifications and licenses", Required: true},
			{Name: "achievements", Description: "Awards, publications and other recognition", Required: true},
		},
	}
}

// Package types provides type definitions for structured data used throughout the easycv system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Field names of StructuredContent, in canonical order.
const (
	FieldName           = "name"
	FieldContact        = "contact"
	FieldSummary        = "summary"
	FieldExperience     = "experience"
	FieldEducation      = "education"
	FieldSkills         = "skills"
	FieldProjects       = "projects"
	FieldCertifications = "certifications"
	FieldAchievements   = "achievements"
)

// ContentFields lists every StructuredContent field in canonical order.
var ContentFields = []string{
	FieldName,
	FieldContact,
	FieldSummary,
	FieldExperience,
	FieldEducation,
	FieldSkills,
	FieldProjects,
	FieldCertifications,
	FieldAchievements,
}

// StructuredContent is the fixed nine-field resume record produced by synthesis.
// All fields are free text.
type StructuredContent struct {
	Name           string `json:"name"`
	Contact        string `json:"contact"`
	Summary        string `json:"summary"`
	Experience     string `json:"experience"`
	Education      string `json:"education"`
	Skills         string `json:"skills"`
	Projects       string `json:"projects"`
	Certifications string `json:"certifications"`
	Achievements   string `json:"achievements"`
}

// Get returns the value of a field by its JSON name.
func (c *StructuredContent) Get(field string) (string, bool) {
	switch field {
	case FieldName:
		return c.Name, true
	case FieldContact:
		return c.Contact, true
	case FieldSummary:
		return c.Summary, true
	case FieldExperience:
		return c.Experience, true
	case FieldEducation:
		return c.Education, true
	case FieldSkills:
		return c.Skills, true
	case FieldProjects:
		return c.Projects, true
	case FieldCertifications:
		return c.Certifications, true
	case FieldAchievements:
		return c.Achievements, true
	}
	return "", false
}

// Set assigns a field by its JSON name. It reports false for unknown fields.
func (c *StructuredContent) Set(field, value string) bool {
	switch field {
	case FieldName:
		c.Name = value
	case FieldContact:
		c.Contact = value
	case FieldSummary:
		c.Summary = value
	case FieldExperience:
		c.Experience = value
	case FieldEducation:
		c.Education = value
	case FieldSkills:
		c.Skills = value
	case FieldProjects:
		c.Projects = value
	case FieldCertifications:
		c.Certifications = value
	case FieldAchievements:
		c.Achievements = value
	default:
		return false
	}
	return true
}

// ToMap flattens the record into a field -> value map.
func (c *StructuredContent) ToMap() map[string]string {
	m := make(map[string]string, len(ContentFields))
	for _, f := range ContentFields {
		v, _ := c.Get(f)
		m[f] = v
	}
	return m
}

// EmptyFields returns the names of fields whose value is blank.
func (c *StructuredContent) EmptyFields() []string {
	var empty []string
	for _, f := range ContentFields {
		if v, _ := c.Get(f); isBlank(v) {
			empty = append(empty, f)
		}
	}
	return empty
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

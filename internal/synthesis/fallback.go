package synthesis

import (
	"strings"

	"github.com/jonathan/easycv/internal/types"
)

// fieldSynonyms lists the labels in either language that name each field
var fieldSynonyms = map[string][]string{
	types.FieldName:           {"name", "full name", "姓名", "名字"},
	types.FieldContact:        {"contact", "contact info", "contact information", "contact details", "联系方式", "联系信息"},
	types.FieldSummary:        {"summary", "profile", "professional summary", "about", "about me", "个人简介", "简介", "个人总结"},
	types.FieldExperience:     {"experience", "work experience", "professional experience", "employment history", "工作经验", "工作经历"},
	types.FieldEducation:      {"education", "教育背景", "教育经历", "学历"},
	types.FieldSkills:         {"skills", "skill", "technical skills", "技能", "技能特长", "专业技能"},
	types.FieldProjects:       {"projects", "project", "project experience", "项目经验", "项目"},
	types.FieldCertifications: {"certifications", "certification", "certificates", "licenses", "证书", "资格证书"},
	types.FieldAchievements:   {"achievements", "achievement", "awards", "accomplishments", "honors", "成就", "成就荣誉", "获奖", "荣誉"},
}

// keySynonyms maps a lower-cased label to its field
var keySynonyms = func() map[string]string {
	m := make(map[string]string)
	for field, labels := range fieldSynonyms {
		for _, label := range labels {
			m[label] = field
		}
	}
	return m
}()

// fieldForLabel resolves a label such as "Work Experience", "**姓名**" or
// "Contact / 联系信息" to a field name.
func fieldForLabel(label string) (string, bool) {
	label = strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(label), "\"'*_`#")))
	if field, ok := keySynonyms[label]; ok {
		return field, true
	}
	// bilingual labels
	for _, part := range strings.Split(label, "/") {
		if field, ok := keySynonyms[strings.TrimSpace(strings.Trim(strings.TrimSpace(part), "\"'*_`"))]; ok {
			return field, true
		}
	}
	return "", false
}

// parseKeyValueLines recovers fields from free text by scanning for
// "key: value" lines and markdown headings whose label is a known synonym.
// Lines after a recognized key are appended to that field until the next key.
func parseKeyValueLines(text string) types.StructuredContent {
	var content types.StructuredContent
	values := make(map[string][]string)
	current := ""

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || line == "{" || line == "}" || strings.HasPrefix(line, "```") {
			if current != "" && line == "" {
				values[current] = append(values[current], "")
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			if field, ok := fieldForLabel(strings.TrimLeft(line, "# ")); ok {
				current = field
				continue
			}
		}

		if field, value, ok := splitKeyValue(line); ok {
			current = field
			if value != "" {
				values[field] = append(values[field], value)
			}
			continue
		}

		if current != "" {
			values[current] = append(values[current], line)
		}
	}

	for _, f := range types.ContentFields {
		if lines, ok := values[f]; ok {
			content.Set(f, strings.TrimSpace(strings.Join(lines, "\n")))
		}
	}
	return content
}

// splitKeyValue splits a "key: value" line on an ASCII or full-width colon
// when the key names a known field.
func splitKeyValue(line string) (string, string, bool) {
	line = strings.TrimLeft(line, "-*• ")
	idx := strings.IndexAny(line, ":：")
	if idx <= 0 {
		return "", "", false
	}
	sepLen := len(":")
	if strings.HasPrefix(line[idx:], "：") {
		sepLen = len("：")
	}

	field, ok := fieldForLabel(line[:idx])
	if !ok {
		return "", "", false
	}
	value := strings.TrimSpace(line[idx+sepLen:])
	value = strings.TrimSuffix(value, ",")
	value = strings.TrimSpace(strings.Trim(value, "\"*"))
	return field, value, true
}

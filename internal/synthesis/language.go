package synthesis

import (
	"strings"

	"github.com/jonathan/easycv/internal/types"
)

// languageProfile holds the per-language strings used in prompts, placeholders and headings
type languageProfile struct {
	directive    string
	placeholders map[string]string
	headings     map[string]string
}

var languageProfiles = map[types.Language]languageProfile{
	types.LanguageEnglish: {
		directive: "Write all output in English.",
		placeholders: map[string]string{
			types.FieldName:           "[Your Name]",
			types.FieldContact:        "[Contact information not provided]",
			types.FieldSummary:        "[Professional summary not provided]",
			types.FieldExperience:     "[Work experience not provided]",
			types.FieldEducation:      "[Education not provided]",
			types.FieldSkills:         "[Skills not provided]",
			types.FieldProjects:       "[Projects not provided]",
			types.FieldCertifications: "[Certifications not provided]",
			types.FieldAchievements:   "[Achievements not provided]",
		},
		headings: map[string]string{
			types.FieldContact:        "Contact",
			types.FieldSummary:        "Summary",
			types.FieldExperience:     "Experience",
			types.FieldEducation:      "Education",
			types.FieldSkills:         "Skills",
			types.FieldProjects:       "Projects",
			types.FieldCertifications: "Certifications",
			types.FieldAchievements:   "Achievements",
		},
	},
	types.LanguageChinese: {
		directive: "请使用简体中文撰写所有内容。Write all output in Simplified Chinese.",
		placeholders: map[string]string{
			types.FieldName:           "[请填写姓名]",
			types.FieldContact:        "[请填写联系方式]",
			types.FieldSummary:        "[请填写个人简介]",
			types.FieldExperience:     "[请填写工作经验]",
			types.FieldEducation:      "[请填写教育背景]",
			types.FieldSkills:         "[请填写技能特长]",
			types.FieldProjects:       "[请填写项目经验]",
			types.FieldCertifications: "[请填写证书]",
			types.FieldAchievements:   "[请填写成就荣誉]",
		},
		headings: map[string]string{
			types.FieldContact:        "联系信息",
			types.FieldSummary:        "个人简介",
			types.FieldExperience:     "工作经验",
			types.FieldEducation:      "教育背景",
			types.FieldSkills:         "技能特长",
			types.FieldProjects:       "项目经验",
			types.FieldCertifications: "证书",
			types.FieldAchievements:   "成就荣誉",
		},
	},
}

func init() {
	en := languageProfiles[types.LanguageEnglish]
	zh := languageProfiles[types.LanguageChinese]
	bilingual := languageProfile{
		directive:    "Write every section in both English and Simplified Chinese: the English text first, followed by its Chinese translation.",
		placeholders: make(map[string]string, len(types.ContentFields)),
		headings:     make(map[string]string, len(en.headings)),
	}
	for _, f := range types.ContentFields {
		bilingual.placeholders[f] = en.placeholders[f] + " / " + zh.placeholders[f]
	}
	for f, h := range en.headings {
		bilingual.headings[f] = h + " / " + zh.headings[f]
	}
	languageProfiles[types.LanguageBilingual] = bilingual
}

func profileFor(lang types.Language) languageProfile {
	if p, ok := languageProfiles[lang]; ok {
		return p
	}
	return languageProfiles[types.LanguageEnglish]
}

// Directive returns the output-language instruction embedded in prompts
func Directive(lang types.Language) string {
	return profileFor(lang).directive
}

// Placeholder returns the language-appropriate placeholder for a field
func Placeholder(lang types.Language, field string) string {
	return profileFor(lang).placeholders[field]
}

// Heading returns the section heading used for a field in the default layout
func Heading(lang types.Language, field string) string {
	return profileFor(lang).headings[field]
}

// PlaceholderContent returns a record where every field holds its placeholder
func PlaceholderContent(lang types.Language) types.StructuredContent {
	var content types.StructuredContent
	for _, f := range types.ContentFields {
		content.Set(f, Placeholder(lang, f))
	}
	return content
}

// IsPlaceholder reports whether value is the placeholder of field in any language
func IsPlaceholder(field, value string) bool {
	value = strings.TrimSpace(value)
	for _, p := range languageProfiles {
		if p.placeholders[field] == value {
			return true
		}
	}
	return false
}

// fillPlaceholders sets every blank field, and every field still holding a
// placeholder of any language, to the placeholder for lang. It returns the
// filled field names.
func fillPlaceholders(content *types.StructuredContent, lang types.Language) []string {
	var filled []string
	for _, f := range types.ContentFields {
		if v, _ := content.Get(f); strings.TrimSpace(v) != "" && !IsPlaceholder(f, v) {
			continue
		}
		content.Set(f, Placeholder(lang, f))
		filled = append(filled, f)
	}
	return filled
}

package types

import (
	"fmt"
	"strings"
)

// Language selects the instructed output language for synthesized content.
type Language string

const (
	// LanguageEnglish is the source-default language
	LanguageEnglish Language = "english"
	// LanguageChinese is the secondary language
	LanguageChinese Language = "chinese"
	// LanguageBilingual combines English and Chinese in every field
	LanguageBilingual Language = "bilingual"
)

// Languages lists all supported languages.
var Languages = []Language{LanguageEnglish, LanguageChinese, LanguageBilingual}

// ParseLanguage accepts the canonical names plus common aliases ("en", "zh", "both", ...).
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "english", "en":
		return LanguageEnglish, nil
	case "chinese", "zh", "cn", "中文":
		return LanguageChinese, nil
	case "bilingual", "both", "en-zh", "双语":
		return LanguageBilingual, nil
	}
	return "", fmt.Errorf("unsupported language %q (expected one of: english, chinese, bilingual)", s)
}

// String implements fmt.Stringer
func (l Language) String() string {
	return string(l)
}

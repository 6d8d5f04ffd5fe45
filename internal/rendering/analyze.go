package rendering

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	markdownLink  = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)
	numberedItem  = regexp.MustCompile(`^\d+\.\s`)
	analyzedNames = []string{"experience", "education", "skills", "contact"}
)

// MarkdownStats summarizes the structure of a markdown document
type MarkdownStats struct {
	TotalLines     int      `json:"total_lines"`
	NonEmptyLines  int      `json:"non_empty_lines"`
	Headings       int      `json:"headings"`
	ListItems      int      `json:"lists"`
	Links          int      `json:"links"`
	FoundSections  []string `json:"found_sections"`
	HasFrontMatter bool     `json:"has_metadata"`
	WordCount      int      `json:"word_count"`
	CharacterCount int      `json:"character_count"`
}

// AnalyzeMarkdown counts headings, list items, links and well-known section names
func AnalyzeMarkdown(text string) MarkdownStats {
	stats := MarkdownStats{
		HasFrontMatter: HasFrontMatter(text),
		WordCount:      len(strings.Fields(text)),
		CharacterCount: utf8.RuneCountInString(text),
		Links:          len(markdownLink.FindAllStringIndex(text, -1)),
		FoundSections:  []string{},
	}
	if text == "" {
		return stats
	}

	lines := strings.Split(text, "\n")
	stats.TotalLines = len(lines)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		stats.NonEmptyLines++
		switch {
		case strings.HasPrefix(trimmed, "#"):
			stats.Headings++
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "),
			strings.HasPrefix(trimmed, "+ "), numberedItem.MatchString(trimmed):
			stats.ListItems++
		}
	}

	lower := strings.ToLower(text)
	for _, name := range analyzedNames {
		if strings.Contains(lower, name) {
			stats.FoundSections = append(stats.FoundSections, name)
		}
	}
	return stats
}

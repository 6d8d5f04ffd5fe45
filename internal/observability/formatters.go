// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/easycv/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, ending in "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// firstLine returns the first non-blank line of s
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printBanner prints a single-line box
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBanner(text string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, text)
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

// PrintExtraction outputs how much text each source document produced.
func (p *Printer) PrintExtraction(batch types.ExtractionBatch) {
	if len(batch) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Documents: %d (%d failed)\n\n", len(batch), len(batch.Failures())))

	count := min(len(batch), maxItemsToShow)
	for i := 0; i < count; i++ {
		doc := batch[i]
		name := filepath.Base(doc.Path)
		if doc.Failed() {
			sb.WriteString(fmt.Sprintf("⚠ %s\n", name))
			sb.WriteString(fmt.Sprintf("  %s\n", doc.Error))
			continue
		}
		sb.WriteString(fmt.Sprintf("• %s  (%d chars)\n", name, len([]rune(doc.Text))))
	}

	if len(batch) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more documents\n", len(batch)-maxItemsToShow))
	}

	p.printBox("PARSED DOCUMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStructuredContent outputs the first line of each resume field,
// marking fields that hold placeholder text.
func (p *Printer) PrintStructuredContent(content types.StructuredContent, placeholders []string) {
	isPlaceholder := make(map[string]bool, len(placeholders))
	for _, f := range placeholders {
		isPlaceholder[f] = true
	}

	var sb strings.Builder
	for _, field := range types.ContentFields {
		value, _ := content.Get(field)
		marker := "✓"
		if isPlaceholder[field] {
			marker = "…"
		}
		sb.WriteString(fmt.Sprintf("%s %-15s %s\n", marker, field, firstLine(value)))
	}
	if len(placeholders) > 0 {
		sb.WriteString(fmt.Sprintf("\n%d field(s) use placeholder text", len(placeholders)))
	}

	p.printBox("STRUCTURED CONTENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStyleAnalysis outputs the style notes in key order.
func (p *Printer) PrintStyleAnalysis(analysis map[string]string) {
	if len(analysis) == 0 {
		return
	}

	keys := make([]string, 0, len(analysis))
	for k := range analysis {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s: %s\n", k, firstLine(analysis[k])))
	}

	p.printBox("STYLE ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintUnresolved outputs template placeholders that had no value.
func (p *Printer) PrintUnresolved(placeholders []string) {
	if len(placeholders) == 0 {
		p.printBanner("✅ ALL PLACEHOLDERS RESOLVED")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d unresolved placeholders:\n\n", len(placeholders)))
	for _, name := range placeholders {
		sb.WriteString(fmt.Sprintf("⚠ {{%s}}\n", name))
	}

	p.printBox("UNRESOLVED PLACEHOLDERS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintManifest outputs the artifacts of a version with the strategy
// that produced each one and any formats that failed.
func (p *Printer) PrintManifest(m *types.Manifest) {
	if m == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile:  %s\n", m.ProfileName))
	sb.WriteString(fmt.Sprintf("Version:  %s\n", m.Version))
	if m.PreviousVersion != "" {
		sb.WriteString(fmt.Sprintf("Previous: %s\n", m.PreviousVersion))
	}
	sb.WriteString("\n")

	formats := make([]string, 0, len(m.FilesGenerated))
	for f := range m.FilesGenerated {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	for _, f := range formats {
		line := fmt.Sprintf("• %-8s %s", f, filepath.Base(m.FilesGenerated[f]))
		if s := m.Strategies[f]; s != "" && s != f {
			line += fmt.Sprintf(" [%s]", s)
		}
		sb.WriteString(line + "\n")
	}

	failed := make([]string, 0, len(m.Failures))
	for f := range m.Failures {
		failed = append(failed, f)
	}
	sort.Strings(failed)
	for _, f := range failed {
		sb.WriteString(fmt.Sprintf("⚠ %-8s %s\n", f, m.Failures[f]))
	}

	if len(m.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\n%d warning(s)", len(m.Warnings)))
	}

	p.printBox("GENERATED ARTIFACTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProfiles outputs one line per profile with its latest version.
func (p *Printer) PrintProfiles(profiles []types.ProfileSummary) {
	if len(profiles) == 0 {
		p.printBanner("NO PROFILES FOUND")
		return
	}

	var sb strings.Builder
	for _, s := range profiles {
		sb.WriteString(fmt.Sprintf("• %-20s %s (%d)\n", truncate(s.Name, 20), s.LatestVersion, s.TotalVersions))
	}

	p.printBox("PROFILES", strings.TrimSuffix(sb.String(), "\n"))
}

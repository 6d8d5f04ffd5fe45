package rendering

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GeneratedBy is stamped into every front matter block
const GeneratedBy = "EasyCV"

const frontMatterDelimiter = "---"

// FrontMatter is the metadata block at the top of a markdown artifact
type FrontMatter struct {
	Title       string            `yaml:"title,omitempty"`
	Version     string            `yaml:"version,omitempty"`
	CreatedAt   string            `yaml:"created_at,omitempty"`
	GeneratedBy string            `yaml:"generated_by,omitempty"`
	Extra       map[string]string `yaml:",inline"`
}

// FrontMatterFor builds the block stamped for doc
func FrontMatterFor(doc Document) FrontMatter {
	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return FrontMatter{
		Title:       doc.Title(),
		Version:     doc.Version,
		CreatedAt:   created.Format(time.RFC3339),
		GeneratedBy: GeneratedBy,
	}
}

// splitFrontMatter separates a leading --- block from the body. The body has
// its leading newlines removed.
func splitFrontMatter(text string) (block, body string, ok bool) {
	trimmed := strings.TrimPrefix(text, "\ufeff")
	if !strings.HasPrefix(trimmed, frontMatterDelimiter+"\n") && !strings.HasPrefix(trimmed, frontMatterDelimiter+"\r\n") {
		return "", text, false
	}

	lines := strings.SplitAfter(trimmed, "\n")
	offset := len(lines[0])
	for _, line := range lines[1:] {
		if strings.TrimRight(line, "\r\n") == frontMatterDelimiter {
			block = trimmed[len(lines[0]):offset]
			body = strings.TrimLeft(trimmed[offset+len(line):], "\r\n")
			return block, body, true
		}
		offset += len(line)
	}
	return "", text, false
}

// HasFrontMatter reports whether text starts with a closed metadata block
func HasFrontMatter(text string) bool {
	_, _, ok := splitFrontMatter(text)
	return ok
}

// ExtractFrontMatter parses the leading metadata block. Blocks that are not
// valid YAML are read as plain "key: value" lines.
func ExtractFrontMatter(text string) (FrontMatter, bool) {
	block, _, ok := splitFrontMatter(text)
	if !ok {
		return FrontMatter{}, false
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(block), &fm); err == nil {
		return fm, true
	}
	return parseFrontMatterLines(block), true
}

func parseFrontMatterLines(block string) FrontMatter {
	var fm FrontMatter
	for _, line := range strings.Split(block, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		switch key {
		case "":
			continue
		case "title":
			fm.Title = value
		case "version":
			fm.Version = value
		case "created_at":
			fm.CreatedAt = value
		case "generated_by":
			fm.GeneratedBy = value
		default:
			if fm.Extra == nil {
				fm.Extra = make(map[string]string)
			}
			fm.Extra[key] = value
		}
	}
	return fm
}

// StripFrontMatter returns text without its leading metadata block
func StripFrontMatter(text string) string {
	_, body, ok := splitFrontMatter(text)
	if !ok {
		return text
	}
	return body
}

// PrependFrontMatter renders fm as a --- block followed by a blank line and body
func PrependFrontMatter(fm FrontMatter, body string) (string, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	var b strings.Builder
	b.WriteString(frontMatterDelimiter + "\n")
	b.Write(out)
	b.WriteString(frontMatterDelimiter + "\n\n")
	b.WriteString(body)
	return b.String(), nil
}

// EnsureFrontMatter prepends fm unless text already carries a block
func EnsureFrontMatter(text string, fm FrontMatter) (string, error) {
	if HasFrontMatter(text) {
		return text, nil
	}
	return PrependFrontMatter(fm, text)
}

// MarkdownStrategy writes the canonical text verbatim under a front matter block
func MarkdownStrategy() Strategy {
	return Strategy{
		Name: "markdown",
		Ext:  ".md",
		Render: func(_ context.Context, doc Document, w io.Writer) error {
			text, err := EnsureFrontMatter(doc.Text, FrontMatterFor(doc))
			if err != nil {
				return err
			}
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			_, err = io.WriteString(w, text)
			return err
		},
	}
}

package synthesis

import (
	"strings"

	"github.com/jonathan/easycv/internal/types"
)

// RenderCanonical lays out structured content as markdown using the
// language's section headings. It is used when no template is supplied.
func RenderCanonical(content types.StructuredContent, lang types.Language) string {
	sections := make([]string, 0, len(types.ContentFields))

	name := strings.TrimSpace(content.Name)
	if name == "" {
		name = Placeholder(lang, types.FieldName)
	}
	sections = append(sections, "# "+name)

	for _, f := range types.ContentFields[1:] {
		value, _ := content.Get(f)
		value = strings.TrimSpace(value)
		if value == "" {
			value = Placeholder(lang, f)
		}
		sections = append(sections, "## "+Heading(lang, f)+"\n"+value)
	}

	return strings.Join(sections, "\n\n") + "\n"
}

// AggregateDocuments joins the non-empty entries of a batch, each introduced
// by a "=== path ===" line.
func AggregateDocuments(batch types.ExtractionBatch) string {
	blocks := make([]string, 0, len(batch))
	for _, doc := range batch.NonEmpty() {
		blocks = append(blocks, "=== "+doc.Path+" ===\n"+strings.TrimSpace(doc.Text))
	}
	return strings.Join(blocks, "\n\n")
}

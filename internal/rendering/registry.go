package rendering

import (
	"html/template"
	"log"
	"time"

	"github.com/yuin/goldmark"
)

// Options selects the backends behind each format's strategies. Zero values
// leave the corresponding primary strategy unavailable.
type Options struct {
	Word         WordWriter
	Markdown     goldmark.Markdown
	PageTemplate string // path to an html/template file; empty uses the built-in page
	PDF          PDFOptions
}

// DefaultOptions enables every backend except the browser
func DefaultOptions() Options {
	return Options{
		Word:     GodocxWriter{},
		Markdown: NewMarkdownConverter(),
		PDF:      PDFOptions{Timeout: 60 * time.Second},
	}
}

// Registry maps each format to its renderer
type Registry struct {
	renderers map[Format]*Renderer
}

// NewRegistry builds the renderers for every format
func NewRegistry(opts Options, logger *log.Logger) (*Registry, error) {
	page, err := LoadPageTemplate(opts.PageTemplate)
	if err != nil {
		return nil, err
	}
	return newRegistry(opts, page, logger), nil
}

func newRegistry(opts Options, page *template.Template, logger *log.Logger) *Registry {
	return &Registry{renderers: map[Format]*Renderer{
		FormatMarkdown: NewRenderer(FormatMarkdown, logger, MarkdownStrategy()),
		FormatWord:     NewRenderer(FormatWord, logger, DocxStrategy(opts.Word), RTFStrategy(), TextStrategy()),
		FormatHTML:     NewRenderer(FormatHTML, logger, GoldmarkStrategy(opts.Markdown, page), ScannerStrategy(page)),
		FormatPDF:      NewRenderer(FormatPDF, logger, PDFStrategy(opts.PDF, opts.Markdown, page)),
	}}
}

// Renderer returns the renderer for format
func (r *Registry) Renderer(format Format) (*Renderer, bool) {
	renderer, ok := r.renderers[format]
	return renderer, ok
}

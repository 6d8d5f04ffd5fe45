package rendering

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/easycv/internal/types"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/page.html.tmpl
var defaultPageTemplate string

// PageData is passed to the HTML page template
type PageData struct {
	Title       string
	Lang        string
	Version     string
	CreatedAt   string
	GeneratedBy string
	Body        template.HTML
}

// NewMarkdownConverter returns the goldmark converter used by the html format
func NewMarkdownConverter() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
}

// LoadPageTemplate parses the page template at path, or the embedded
// default when path is empty.
func LoadPageTemplate(path string) (*template.Template, error) {
	if path == "" {
		return parsePageTemplate("page", defaultPageTemplate)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", path),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", path),
			Cause:   err,
		}
	}
	return parsePageTemplate(path, string(content))
}

func parsePageTemplate(name, content string) (*template.Template, error) {
	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

// GoldmarkStrategy converts the canonical text with md and wraps it in page.
// A nil converter makes the strategy unavailable.
func GoldmarkStrategy(md goldmark.Markdown, page *template.Template) Strategy {
	return Strategy{
		Name: "goldmark",
		Ext:  ".html",
		Render: func(_ context.Context, doc Document, w io.Writer) error {
			if md == nil {
				return ErrBackendUnavailable
			}
			var body bytes.Buffer
			if err := md.Convert([]byte(StripFrontMatter(doc.Text)), &body); err != nil {
				return fmt.Errorf("failed to convert markdown: %w", err)
			}
			return writePage(w, page, doc, body.String())
		},
	}
}

// ScannerStrategy converts the canonical text with the built-in line scanner
func ScannerStrategy(page *template.Template) Strategy {
	return Strategy{
		Name: "scanner",
		Ext:  ".html",
		Render: func(_ context.Context, doc Document, w io.Writer) error {
			return writePage(w, page, doc, ScanMarkdown(StripFrontMatter(doc.Text)))
		},
	}
}

// RenderPage produces a complete HTML page for doc using the first
// converter that works. It backs the pdf format.
func RenderPage(doc Document, md goldmark.Markdown, page *template.Template) (string, error) {
	body := ""
	if md != nil {
		var buf bytes.Buffer
		if err := md.Convert([]byte(StripFrontMatter(doc.Text)), &buf); err == nil {
			body = buf.String()
		}
	}
	if body == "" {
		body = ScanMarkdown(StripFrontMatter(doc.Text))
	}

	var out bytes.Buffer
	if err := writePage(&out, page, doc, body); err != nil {
		return "", err
	}
	return out.String(), nil
}

func writePage(w io.Writer, page *template.Template, doc Document, body string) error {
	if page == nil {
		return &TemplateError{Message: "no page template"}
	}

	data := PageData{
		Title:       pageTitle(body, doc.Title()),
		Lang:        htmlLang(doc.Language),
		Version:     doc.Version,
		GeneratedBy: GeneratedBy,
		Body:        template.HTML(body),
	}
	if !doc.CreatedAt.IsZero() {
		data.CreatedAt = doc.CreatedAt.Format(time.RFC3339)
	}

	if err := page.Execute(w, data); err != nil {
		return &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return nil
}

// pageTitle returns the text of the first heading in body, or fallback
func pageTitle(body, fallback string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fallback
	}
	if title := strings.TrimSpace(doc.Find("h1, h2").First().Text()); title != "" {
		return title
	}
	return fallback
}

func htmlLang(lang types.Language) string {
	if lang == types.LanguageChinese {
		return "zh-CN"
	}
	return "en"
}

// ScanMarkdown is a line scanner that understands headings, bullet lists,
// numbered lists and paragraphs. An open list is closed before any heading,
// blank line or paragraph.
func ScanMarkdown(text string) string {
	var b strings.Builder
	openList := ""

	closeList := func() {
		if openList != "" {
			b.WriteString("</" + openList + ">\n")
			openList = ""
		}
	}
	openListAs := func(tag string) {
		if openList != tag {
			closeList()
			b.WriteString("<" + tag + ">\n")
			openList = tag
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			closeList()
		case strings.HasPrefix(line, "### "):
			closeList()
			fmt.Fprintf(&b, "<h3>%s</h3>\n", inlineHTML(line[4:]))
		case strings.HasPrefix(line, "## "):
			closeList()
			fmt.Fprintf(&b, "<h2>%s</h2>\n", inlineHTML(line[3:]))
		case strings.HasPrefix(line, "# "):
			closeList()
			fmt.Fprintf(&b, "<h1>%s</h1>\n", inlineHTML(line[2:]))
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			openListAs("ul")
			fmt.Fprintf(&b, "<li>%s</li>\n", inlineHTML(line[2:]))
		case numberedPrefix.MatchString(line):
			openListAs("ol")
			fmt.Fprintf(&b, "<li>%s</li>\n", inlineHTML(numberedPrefix.ReplaceAllString(line, "")))
		default:
			closeList()
			fmt.Fprintf(&b, "<p>%s</p>\n", inlineHTML(line))
		}
	}
	closeList()
	return b.String()
}

// inlineHTML escapes text and applies **bold** and *italic* spans
func inlineHTML(text string) string {
	var b strings.Builder
	for _, r := range parseInline(strings.TrimSpace(text)) {
		escaped := html.EscapeString(r.Text)
		switch {
		case r.Bold:
			b.WriteString("<strong>" + escaped + "</strong>")
		case r.Italic:
			b.WriteString("<em>" + escaped + "</em>")
		default:
			b.WriteString(escaped)
		}
	}
	return b.String()
}

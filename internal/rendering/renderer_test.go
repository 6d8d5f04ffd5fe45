package rendering

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/easycv/internal/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	reg, err := NewRegistry(opts, quietLogger())
	require.NoError(t, err)
	return reg
}

func render(t *testing.T, reg *Registry, format Format, doc Document) (*Artifact, error) {
	t.Helper()
	renderer, ok := reg.Renderer(format)
	require.True(t, ok)
	return renderer.Render(context.Background(), doc, t.TempDir(), "jane.v202403051407")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWord_WithoutDocxWriterFallsBackToRTF(t *testing.T) {
	reg := testRegistry(t, Options{})

	artifact, err := render(t, reg, FormatWord, testDocument("# A\nB"))
	require.NoError(t, err)

	assert.Equal(t, "rtf", artifact.Strategy)
	assert.Equal(t, ".rtf", filepath.Ext(artifact.Path))
	require.Len(t, artifact.Attempts, 1)
	assert.Equal(t, "docx", artifact.Attempts[0].Strategy)
	assert.ErrorIs(t, artifact.Attempts[0].Err, ErrBackendUnavailable)

	content := readFile(t, artifact.Path)
	assert.True(t, strings.HasPrefix(content, `{\rtf1`))
	assert.Contains(t, content, `\par`)
	assert.Contains(t, content, `{\b\fs36 A}`)

	_, statErr := os.Stat(strings.TrimSuffix(artifact.Path, ".rtf") + ".docx")
	assert.True(t, os.IsNotExist(statErr), "failed strategy must not leave a file")
}

func TestWord_DocxIsReadableByParser(t *testing.T) {
	reg := testRegistry(t, DefaultOptions())
	text := "# Jane Doe\n\n## Experience\n- Built **payments** API\n1. Led team\n\n*Remote*"

	artifact, err := render(t, reg, FormatWord, testDocument(text))
	require.NoError(t, err)
	assert.Equal(t, "docx", artifact.Strategy)
	assert.Empty(t, artifact.Attempts)

	parsed, err := ingestion.NewParser(quietLogger()).Parse(artifact.Path)
	require.NoError(t, err)
	assert.Contains(t, parsed.Text, "Jane Doe")
	assert.Contains(t, parsed.Text, "Built payments API")
	assert.Contains(t, parsed.Text, "Led team")
	assert.Contains(t, parsed.Text, "Remote")
}

func readPackage(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	parts := map[string]string{}
	for _, zf := range zr.File {
		rc, err := zf.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		parts[zf.Name] = string(data)
	}
	return parts
}

func TestGodocxWriter_HeaderAndFooter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	blocks := ParseBlocks("# A\n## B\n- c\n1. d\n2. e\n\n1. f\n**g**")
	require.NoError(t, GodocxWriter{}.WriteDocument(f, testDocument(""), blocks))
	require.NoError(t, f.Close())

	parts := readPackage(t, path)
	require.Contains(t, parts, "word/document.xml")
	document := parts["word/document.xml"]
	for _, text := range []string{">A<", ">B<", ">c<", ">d<", ">f<", ">g<"} {
		assert.Contains(t, document, text)
	}
	assert.Contains(t, document, `r:id="rIdEasycvHeader"`)
	assert.Contains(t, document, `r:id="rIdEasycvFooter"`)

	assert.Contains(t, parts[headerPart], ">jane Resume<")
	assert.Contains(t, parts[footerPart], ">Generated by EasyCV - Version v202403051407<")
	assert.Contains(t, parts["word/_rels/document.xml.rels"], `Target="header1.xml"`)
	assert.Contains(t, parts["[Content_Types].xml"], `PartName="/word/footer1.xml"`)
}

func TestAddSectionReferences(t *testing.T) {
	refs := `<w:headerReference xmlns:r="` + officeDocumentRel + `" w:type="default" r:id="rIdEasycvHeader"/>` +
		`<w:footerReference xmlns:r="` + officeDocumentRel + `" w:type="default" r:id="rIdEasycvFooter"/>`

	tests := []struct {
		name     string
		document string
		want     string
	}{
		{
			name:     "open section",
			document: `<w:body><w:p/><w:sectPr w:rsidR="1"><w:pgSz/></w:sectPr></w:body>`,
			want:     `<w:body><w:p/><w:sectPr w:rsidR="1">` + refs + `<w:pgSz/></w:sectPr></w:body>`,
		},
		{
			name:     "self-closing section",
			document: `<w:body><w:p/><w:sectPr/></w:body>`,
			want:     `<w:body><w:p/><w:sectPr>` + refs + `</w:sectPr></w:body>`,
		},
		{
			name:     "no section",
			document: `<w:body><w:p/></w:body>`,
			want:     `<w:body><w:p/><w:sectPr>` + refs + `</w:sectPr></w:body>`,
		},
		{
			name:     "last section wins",
			document: `<w:body><w:p><w:pPr><w:sectPr/></w:pPr></w:p><w:sectPr></w:sectPr></w:body>`,
			want:     `<w:body><w:p><w:pPr><w:sectPr/></w:pPr></w:p><w:sectPr>` + refs + `</w:sectPr></w:body>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := addSectionReferences(tt.document)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := addSectionReferences(`<w:document/>`)
	assert.Error(t, err)
}

func TestWord_TextFallback(t *testing.T) {
	failing := Strategy{
		Name: "rtf",
		Ext:  ".rtf",
		Render: func(context.Context, Document, io.Writer) error {
			return errors.New("disk full")
		},
	}
	renderer := NewRenderer(FormatWord, quietLogger(), DocxStrategy(nil), failing, TextStrategy())

	artifact, err := renderer.Render(context.Background(), testDocument("# A\n- b\n1. c\n2. d"), t.TempDir(), "out")
	require.NoError(t, err)
	assert.Equal(t, "text", artifact.Strategy)
	assert.Len(t, artifact.Attempts, 2)
	assert.Equal(t, "A\n=\n• b\n1. c\n2. d\n", readFile(t, artifact.Path))
}

func TestRenderer_AllStrategiesFail(t *testing.T) {
	renderer := NewRenderer(FormatPDF, quietLogger(), PDFStrategy(PDFOptions{}, nil, nil))
	dir := t.TempDir()

	artifact, err := renderer.Render(context.Background(), testDocument("# A"), dir, "out")
	assert.Nil(t, artifact)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, FormatPDF, renderErr.Format)
	require.Len(t, renderErr.Attempts, 1)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "chromedp")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer(FormatMarkdown, quietLogger(), MarkdownStrategy()).Render(ctx, testDocument("# A"), t.TempDir(), "out")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMarkdown_WritesFrontMatterOnce(t *testing.T) {
	reg := testRegistry(t, DefaultOptions())

	artifact, err := render(t, reg, FormatMarkdown, testDocument("# Jane\n\nBody"))
	require.NoError(t, err)
	assert.Equal(t, ".md", filepath.Ext(artifact.Path))

	content := readFile(t, artifact.Path)
	assert.True(t, strings.HasPrefix(content, "---\ntitle: jane Resume\n"))
	assert.True(t, strings.HasSuffix(content, "# Jane\n\nBody\n"))

	again, err := render(t, reg, FormatMarkdown, testDocument(content))
	require.NoError(t, err)
	assert.Equal(t, content, readFile(t, again.Path))
}

func TestHTML_Goldmark(t *testing.T) {
	reg := testRegistry(t, DefaultOptions())

	artifact, err := render(t, reg, FormatHTML, testDocument("---\ntitle: x\n---\n# Jane Doe\n\n## Skills\n- Go\n- SQL"))
	require.NoError(t, err)
	assert.Equal(t, "goldmark", artifact.Strategy)

	content := readFile(t, artifact.Path)
	assert.Contains(t, content, "<title>Jane Doe</title>")
	assert.Contains(t, content, "<h1>Jane Doe</h1>")
	assert.Contains(t, content, "<li>Go</li>")
	assert.Contains(t, content, "@media print")
	assert.NotContains(t, content, "title: x")
}

func TestHTML_ScannerFallback(t *testing.T) {
	reg := testRegistry(t, Options{})

	artifact, err := render(t, reg, FormatHTML, testDocument("Just text <b>"))
	require.NoError(t, err)
	assert.Equal(t, "scanner", artifact.Strategy)

	content := readFile(t, artifact.Path)
	assert.Contains(t, content, "<title>jane Resume</title>")
	assert.Contains(t, content, "<p>Just text &lt;b&gt;</p>")
	assert.Contains(t, content, `<html lang="en">`)
}

func TestScanMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "list closed before heading",
			input: "- a\n- b\n## Next",
			want:  "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n<h2>Next</h2>\n",
		},
		{
			name:  "list closed at blank line",
			input: "* a\n\n* b",
			want:  "<ul>\n<li>a</li>\n</ul>\n<ul>\n<li>b</li>\n</ul>\n",
		},
		{
			name:  "list closed at end",
			input: "# T\n1. one\n2. two",
			want:  "<h1>T</h1>\n<ol>\n<li>one</li>\n<li>two</li>\n</ol>\n",
		},
		{
			name:  "switching list kinds",
			input: "- a\n1. b",
			want:  "<ul>\n<li>a</li>\n</ul>\n<ol>\n<li>b</li>\n</ol>\n",
		},
		{
			name:  "inline emphasis escaped",
			input: "**R&D** and *ops*",
			want:  "<p><strong>R&amp;D</strong> and <em>ops</em></p>\n",
		},
		{
			name:  "deep heading is a paragraph",
			input: "#### Deep",
			want:  "<p>#### Deep</p>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanMarkdown(tt.input))
		})
	}
}

func TestParseBlocks(t *testing.T) {
	blocks := ParseBlocks("---\ntitle: x\n---\n# A\n## B\n### C\n#### D\n- e\n* f\n3. g\n**h**\n*i*\n\nplain **j** k\n**")
	require.Len(t, blocks, 12)

	kinds := make([]BlockKind, len(blocks))
	for i, b := range blocks {
		kinds[i] = b.Kind
	}
	assert.Equal(t, []BlockKind{
		BlockHeading, BlockHeading, BlockHeading, BlockParagraph, BlockBullet, BlockBullet,
		BlockNumbered, BlockParagraph, BlockParagraph, BlockEmpty, BlockParagraph, BlockParagraph,
	}, kinds)

	assert.Equal(t, 3, blocks[2].Level)
	assert.Equal(t, "#### D", blocks[3].Text())
	assert.Equal(t, "g", blocks[6].Text())
	assert.Equal(t, []Run{{Text: "h", Bold: true}}, blocks[7].Runs)
	assert.Equal(t, []Run{{Text: "i", Italic: true}}, blocks[8].Runs)
	assert.Equal(t, []Run{{Text: "plain "}, {Text: "j", Bold: true}, {Text: " k"}}, blocks[10].Runs)
	assert.Equal(t, "**", blocks[11].Text())
}

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats([]string{"md", "docx", "website", "markdown", "PDF"})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatMarkdown, FormatWord, FormatHTML, FormatPDF}, formats)

	_, err = ParseFormats([]string{"latex"})
	assert.Error(t, err)
}

func TestLoadPageTemplate(t *testing.T) {
	tmpl, err := LoadPageTemplate("")
	require.NoError(t, err)
	assert.NotNil(t, tmpl)

	_, err = LoadPageTemplate("/nonexistent/page.html")
	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "template file not found")

	invalid := filepath.Join(t.TempDir(), "invalid.html")
	require.NoError(t, os.WriteFile(invalid, []byte("{{.Body"), 0644))
	_, err = LoadPageTemplate(invalid)
	assert.ErrorAs(t, err, &templateErr)

	custom := filepath.Join(t.TempDir(), "custom.html")
	require.NoError(t, os.WriteFile(custom, []byte("<title>{{.Title}}</title>{{.Body}}"), 0644))
	reg := testRegistry(t, Options{PageTemplate: custom})
	artifact, err := render(t, reg, FormatHTML, testDocument("# Jane"))
	require.NoError(t, err)
	assert.Equal(t, "<title>Jane</title><h1>Jane</h1>\n", readFile(t, artifact.Path))
}

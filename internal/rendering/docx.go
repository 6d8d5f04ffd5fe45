package rendering

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

// WordWriter encodes converted blocks as a word-processor package
type WordWriter interface {
	WriteDocument(w io.Writer, doc Document, blocks []Block) error
}

// GodocxWriter builds the .docx with godocx, then stamps the document title
// in the page header and the generator and version in the footer.
type GodocxWriter struct{}

// WriteDocument writes blocks as headings, list paragraphs and styled runs
func (GodocxWriter) WriteDocument(w io.Writer, doc Document, blocks []Block) error {
	rd, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	for _, block := range blocks {
		if err := addBlock(rd, block); err != nil {
			return err
		}
	}

	var pkg bytes.Buffer
	if err := rd.Write(&pkg); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return stampHeaderFooter(w, pkg.Bytes(), doc)
}

func addBlock(rd *docx.RootDoc, block Block) error {
	switch block.Kind {
	case BlockEmpty:
		rd.AddEmptyParagraph()
		return nil
	case BlockHeading:
		if _, err := rd.AddHeading(block.Text(), uint(block.Level)); err != nil {
			return fmt.Errorf("failed to add heading %q: %w", block.Text(), err)
		}
		return nil
	}

	p := rd.AddEmptyParagraph()
	switch block.Kind {
	case BlockBullet:
		p.Style("List Bullet")
	case BlockNumbered:
		p.Style("List Number")
	}
	for _, r := range block.Runs {
		if r.Text == "" {
			continue
		}
		run := p.AddText(r.Text)
		if r.Bold {
			run.Bold(true)
		}
		if r.Italic {
			run.Italic(true)
		}
	}
	return nil
}

const (
	xmlHeader         = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	wordprocessingNS  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	officeDocumentRel = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	wordContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml"

	headerPart  = "word/header1.xml"
	footerPart  = "word/footer1.xml"
	headerRelID = "rIdEasycvHeader"
	footerRelID = "rIdEasycvFooter"
)

// sectionStart matches the opening (or self-closing) tag of a section's properties
var sectionStart = regexp.MustCompile(`<w:sectPr(\s[^>]*)?/?>`)

// packageEdits rewrite the parts that must reference the header and footer
var packageEdits = map[string]func(string) (string, error){
	"[Content_Types].xml": func(s string) (string, error) {
		return insertBefore(s, "</Types>",
			`<Override PartName="/`+headerPart+`" ContentType="`+wordContentType+`.header+xml"/>`+
				`<Override PartName="/`+footerPart+`" ContentType="`+wordContentType+`.footer+xml"/>`)
	},
	"word/_rels/document.xml.rels": func(s string) (string, error) {
		return insertBefore(s, "</Relationships>",
			`<Relationship Id="`+headerRelID+`" Type="`+officeDocumentRel+`/header" Target="header1.xml"/>`+
				`<Relationship Id="`+footerRelID+`" Type="`+officeDocumentRel+`/footer" Target="footer1.xml"/>`)
	},
	"word/document.xml": addSectionReferences,
}

// stampHeaderFooter copies pkg to w with a header part holding the title and
// a footer part holding the generator and version
func stampHeaderFooter(w io.Writer, pkg []byte, doc Document) error {
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return fmt.Errorf("failed to read document package: %w", err)
	}

	zw := zip.NewWriter(w)
	edited := 0
	for _, f := range zr.File {
		edit, ok := packageEdits[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("failed to copy %s: %w", f.Name, err)
			}
			continue
		}

		data, err := readZipEntry(f)
		if err != nil {
			return err
		}
		updated, err := edit(string(data))
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", f.Name, err)
		}
		if err := writeZipEntry(zw, f.Name, updated); err != nil {
			return err
		}
		edited++
	}
	if edited != len(packageEdits) {
		return errors.New("document package is missing required parts")
	}

	footer := GeneratedBy
	if doc.Version != "" {
		footer = fmt.Sprintf("Generated by %s - Version %s", GeneratedBy, doc.Version)
	}
	if err := writeZipEntry(zw, headerPart, centeredPart("hdr", doc.Title())); err != nil {
		return err
	}
	if err := writeZipEntry(zw, footerPart, centeredPart("ftr", footer)); err != nil {
		return err
	}
	return zw.Close()
}

// addSectionReferences points the body's last section at the header and footer parts
func addSectionReferences(document string) (string, error) {
	refs := `<w:headerReference xmlns:r="` + officeDocumentRel + `" w:type="default" r:id="` + headerRelID + `"/>` +
		`<w:footerReference xmlns:r="` + officeDocumentRel + `" w:type="default" r:id="` + footerRelID + `"/>`

	matches := sectionStart.FindAllStringIndex(document, -1)
	if len(matches) == 0 {
		return insertBefore(document, "</w:body>", "<w:sectPr>"+refs+"</w:sectPr>")
	}
	start, end := matches[len(matches)-1][0], matches[len(matches)-1][1]
	tag := document[start:end]
	if strings.HasSuffix(tag, "/>") {
		open := strings.TrimSpace(strings.TrimSuffix(tag, "/>")) + ">"
		return document[:start] + open + refs + "</w:sectPr>" + document[end:], nil
	}
	return document[:end] + refs + document[end:], nil
}

func centeredPart(root, text string) string {
	return xmlHeader +
		`<w:` + root + ` xmlns:w="` + wordprocessingNS + `">` +
		`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` +
		`<w:r><w:t xml:space="preserve">` + escapeXML(text) + `</w:t></w:r></w:p>` +
		`</w:` + root + `>`
}

func insertBefore(s, marker, insert string) (string, error) {
	i := strings.LastIndex(s, marker)
	if i < 0 {
		return "", fmt.Errorf("%s not found", marker)
	}
	return s[:i] + insert + s[i:], nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return data, nil
}

func writeZipEntry(zw *zip.Writer, name, content string) error {
	part, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

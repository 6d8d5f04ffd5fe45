package rendering

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// DocxStrategy writes a .docx through writer. A nil writer makes the
// strategy unavailable so the renderer falls through to RTF.
func DocxStrategy(writer WordWriter) Strategy {
	return Strategy{
		Name: "docx",
		Ext:  ".docx",
		Render: func(_ context.Context, doc Document, w io.Writer) error {
			if writer == nil {
				return ErrBackendUnavailable
			}
			return writer.WriteDocument(w, doc, ParseBlocks(doc.Text))
		},
	}
}

// RTFStrategy writes a minimal rich-text file with one \par per block
func RTFStrategy() Strategy {
	return Strategy{
		Name: "rtf",
		Ext:  ".rtf",
		Render: func(_ context.Context, doc Document, w io.Writer) error {
			_, err := io.WriteString(w, renderRTF(doc, ParseBlocks(doc.Text)))
			return err
		},
	}
}

// TextStrategy writes the converted blocks as plain text
func TextStrategy() Strategy {
	return Strategy{
		Name: "text",
		Ext:  ".txt",
		Render: func(_ context.Context, doc Document, w io.Writer) error {
			_, err := io.WriteString(w, renderPlainText(ParseBlocks(doc.Text)))
			return err
		},
	}
}

var rtfHeadingSizes = map[int]int{1: 36, 2: 28, 3: 24}

func renderRTF(doc Document, blocks []Block) string {
	var b strings.Builder
	b.WriteString(`{\rtf1\ansi\ansicpg1252\deff0{\fonttbl{\f0\fswiss Calibri;}}` + "\n")
	fmt.Fprintf(&b, `{\info{\title %s}{\author %s}}`+"\n", EscapeRTF(doc.Title()), GeneratedBy)
	b.WriteString(`\uc1\fs22` + "\n")

	number := 0
	for _, block := range blocks {
		if block.Kind == BlockNumbered {
			number++
		} else {
			number = 0
		}

		b.WriteString(`\pard `)
		switch block.Kind {
		case BlockHeading:
			fmt.Fprintf(&b, `{\b\fs%d %s}`, rtfHeadingSizes[block.Level], EscapeRTF(block.Text()))
		case BlockBullet:
			b.WriteString(`\li360\fi-360 \bullet\tab `)
			writeRTFRuns(&b, block.Runs)
		case BlockNumbered:
			fmt.Fprintf(&b, `\li360\fi-360 %d.\tab `, number)
			writeRTFRuns(&b, block.Runs)
		default:
			writeRTFRuns(&b, block.Runs)
		}
		b.WriteString(`\par` + "\n")
	}

	b.WriteString("}\n")
	return b.String()
}

func writeRTFRuns(b *strings.Builder, runs []Run) {
	for _, r := range runs {
		text := EscapeRTF(r.Text)
		switch {
		case r.Bold && r.Italic:
			fmt.Fprintf(b, `{\b\i %s}`, text)
		case r.Bold:
			fmt.Fprintf(b, `{\b %s}`, text)
		case r.Italic:
			fmt.Fprintf(b, `{\i %s}`, text)
		default:
			b.WriteString(text)
		}
	}
}

func renderPlainText(blocks []Block) string {
	var b strings.Builder
	number := 0
	for _, block := range blocks {
		if block.Kind == BlockNumbered {
			number++
		} else {
			number = 0
		}

		text := block.Text()
		switch block.Kind {
		case BlockHeading:
			b.WriteString(text + "\n")
			underline := "-"
			if block.Level == 1 {
				underline = "="
			}
			b.WriteString(strings.Repeat(underline, len([]rune(text))) + "\n")
		case BlockBullet:
			b.WriteString("• " + text + "\n")
		case BlockNumbered:
			fmt.Fprintf(&b, "%d. %s\n", number, text)
		default:
			b.WriteString(text + "\n")
		}
	}
	return b.String()
}

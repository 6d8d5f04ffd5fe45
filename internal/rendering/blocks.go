package rendering

import (
	"regexp"
	"strings"
)

// BlockKind is the paragraph type a canonical line converts to
type BlockKind int

const (
	BlockEmpty BlockKind = iota
	BlockHeading
	BlockBullet
	BlockNumbered
	BlockParagraph
)

// Run is a span of text with uniform styling
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Block is one converted line
type Block struct {
	Kind  BlockKind
	Level int // heading level 1-3
	Runs  []Run
}

// Text joins the block's runs without styling
func (b Block) Text() string {
	var s strings.Builder
	for _, r := range b.Runs {
		s.WriteString(r.Text)
	}
	return s.String()
}

var (
	numberedPrefix = regexp.MustCompile(`^\d+\.\s+`)
	inlineEmphasis = regexp.MustCompile(`\*\*([^*]+)\*\*|\*([^*\s][^*]*)\*`)
)

// ParseBlocks converts canonical text into one block per line. The front
// matter block is dropped. Headings deeper than three levels stay paragraphs.
func ParseBlocks(text string) []Block {
	text = strings.ReplaceAll(StripFrontMatter(text), "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, raw := range lines {
		blocks = append(blocks, parseLine(strings.TrimSpace(raw)))
	}
	return blocks
}

func parseLine(line string) Block {
	switch {
	case line == "":
		return Block{Kind: BlockEmpty}
	case strings.HasPrefix(line, "# "):
		return Block{Kind: BlockHeading, Level: 1, Runs: plainRuns(line[2:])}
	case strings.HasPrefix(line, "## "):
		return Block{Kind: BlockHeading, Level: 2, Runs: plainRuns(line[3:])}
	case strings.HasPrefix(line, "### "):
		return Block{Kind: BlockHeading, Level: 3, Runs: plainRuns(line[4:])}
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		return Block{Kind: BlockBullet, Runs: parseInline(line[2:])}
	case numberedPrefix.MatchString(line):
		return Block{Kind: BlockNumbered, Runs: parseInline(numberedPrefix.ReplaceAllString(line, ""))}
	case len(line) > 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && !strings.Contains(line[2:len(line)-2], "**"):
		return Block{Kind: BlockParagraph, Runs: []Run{{Text: line[2 : len(line)-2], Bold: true}}}
	case len(line) > 2 && strings.HasPrefix(line, "*") && strings.HasSuffix(line, "*") && !strings.Contains(line[1:len(line)-1], "*"):
		return Block{Kind: BlockParagraph, Runs: []Run{{Text: line[1 : len(line)-1], Italic: true}}}
	default:
		return Block{Kind: BlockParagraph, Runs: parseInline(line)}
	}
}

func plainRuns(text string) []Run {
	return []Run{{Text: strings.TrimSpace(text)}}
}

// parseInline splits text into runs at **bold** and *italic* spans
func parseInline(text string) []Run {
	matches := inlineEmphasis.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Run{{Text: text}}
	}

	runs := make([]Run, 0, len(matches)*2+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			runs = append(runs, Run{Text: text[last:m[0]]})
		}
		if m[2] >= 0 {
			runs = append(runs, Run{Text: text[m[2]:m[3]], Bold: true})
		} else {
			runs = append(runs, Run{Text: text[m[4]:m[5]], Italic: true})
		}
		last = m[1]
	}
	if last < len(text) {
		runs = append(runs, Run{Text: text[last:]})
	}
	return runs
}

package rendering

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/easycv/internal/types"
)

// Format identifies one output format
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatWord     Format = "word"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// Formats lists every format in render order
var Formats = []Format{FormatMarkdown, FormatWord, FormatHTML, FormatPDF}

// DefaultFormats are rendered when a request names none
var DefaultFormats = []Format{FormatMarkdown, FormatWord, FormatHTML}

// ParseFormat accepts a format name or one of its common aliases
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "word", "docx":
		return FormatWord, nil
	case "html", "website", "web":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", name)
	}
}

// ParseFormats parses a list of format names, dropping duplicates
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool, len(names))
	out := make([]Format, 0, len(names))
	for _, name := range names {
		f, err := ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Document is the canonical text plus the metadata every renderer may stamp
type Document struct {
	Text        string
	ProfileName string
	Version     string
	CreatedAt   time.Time
	Language    types.Language
}

// Title is the human title used in headers and page titles
func (d Document) Title() string {
	if d.ProfileName == "" {
		return "Resume"
	}
	return d.ProfileName + " Resume"
}

// Strategy is one way of producing a format. Render writes the artifact body
// to w; returning ErrBackendUnavailable means the strategy cannot run at all.
type Strategy struct {
	Name   string
	Ext    string
	Render func(ctx context.Context, doc Document, w io.Writer) error
}

// Artifact describes a written file
type Artifact struct {
	Format   Format
	Strategy string
	Path     string
	Attempts []Attempt // strategies that failed before this one succeeded
}

// Renderer tries its strategies in order until one succeeds
type Renderer struct {
	Format     Format
	Strategies []Strategy
	logger     *log.Logger
}

// NewRenderer creates a renderer. A nil logger uses the standard logger.
func NewRenderer(format Format, logger *log.Logger, strategies ...Strategy) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{Format: format, Strategies: strategies, logger: logger}
}

// Render writes dir/base<ext> using the first strategy that succeeds. A
// failed strategy leaves no file behind. When all strategies fail the
// returned *RenderError lists every attempt.
func (r *Renderer) Render(ctx context.Context, doc Document, dir, base string) (*Artifact, error) {
	var attempts []Attempt
	for _, s := range r.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, &RenderError{Format: r.Format, Message: "cancelled", Attempts: attempts, Cause: err}
		}

		path := filepath.Join(dir, base+s.Ext)
		err := writeArtifact(ctx, s, doc, path)
		if err == nil {
			if len(attempts) > 0 {
				r.logger.Printf("[RENDER] %s: used %s strategy after %d failed attempt(s)", r.Format, s.Name, len(attempts))
			}
			return &Artifact{Format: r.Format, Strategy: s.Name, Path: path, Attempts: attempts}, nil
		}

		if errors.Is(err, ErrBackendUnavailable) {
			r.logger.Printf("[RENDER] %s: %s strategy unavailable", r.Format, s.Name)
		} else {
			r.logger.Printf("[RENDER] %s: %s strategy failed: %v", r.Format, s.Name, err)
		}
		attempts = append(attempts, Attempt{Strategy: s.Name, Err: err})
	}

	var cause error
	if len(attempts) > 0 {
		cause = attempts[len(attempts)-1].Err
	}
	return nil, &RenderError{Format: r.Format, Message: "all strategies failed", Attempts: attempts, Cause: cause}
}

func writeArtifact(ctx context.Context, s Strategy, doc Document, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return s.Render(ctx, doc, f)
}

// Package ingestion extracts plain text from resume source documents.
package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/easycv/internal/types"
)

// Supported input formats, keyed by lower-case extension
const (
	FormatPDF      = ".pdf"
	FormatDocx     = ".docx"
	FormatDoc      = ".doc"
	FormatMarkdown = ".md"
	FormatText     = ".txt"
	FormatHTML     = ".html"
	FormatHTM      = ".htm"
)

type extractor func(path string) (string, error)

var extractors = map[string]extractor{
	FormatPDF:      extractPDF,
	FormatDocx:     extractDocx,
	FormatDoc:      extractDocx,
	FormatMarkdown: readText,
	FormatText:     readText,
	FormatHTML:     extractHTML,
	FormatHTM:      extractHTML,
}

// SupportedFormats returns the accepted extensions in sorted order
func SupportedFormats() []string {
	formats := make([]string, 0, len(extractors))
	for ext := range extractors {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}

// IsSupported reports whether the path has a supported extension
func IsSupported(path string) bool {
	_, ok := extractors[formatOf(path)]
	return ok
}

func formatOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Limits bounds an upfront batch validation
type Limits struct {
	MaxFileSizeBytes int64
	MaxFiles         int
}

// Parser dispatches source files to format-specific extractors
type Parser struct {
	logger *log.Logger
}

// NewParser creates a parser. A nil logger uses the standard logger.
func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	return &Parser{logger: logger}
}

// Parse extracts the text of a single file.
// The format is checked before the filesystem is touched.
func (p *Parser) Parse(path string) (*types.SourceDocument, error) {
	format := formatOf(path)
	extract, ok := extractors[format]
	if !ok {
		return nil, &UnsupportedFormatError{Path: path, Extension: format}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Cause: err}
		}
		return nil, &ExtractionError{Path: path, Format: format, Cause: err}
	}
	if info.IsDir() {
		return nil, &ExtractionError{Path: path, Format: format, Cause: errors.New("path is a directory")}
	}

	raw, err := extract(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Format: format, Cause: err}
	}

	text := CleanText(raw)
	return &types.SourceDocument{
		Path:        path,
		Format:      format,
		Text:        text,
		Hash:        computeHash(text),
		ExtractedAt: time.Now().UTC(),
	}, nil
}

// ParseBatch parses every path independently. Each path gets exactly one
// entry in input order; a failed file is logged and recorded with empty text.
// Paths not yet parsed when ctx is cancelled are recorded as failed.
func (p *Parser) ParseBatch(ctx context.Context, paths []string) types.ExtractionBatch {
	batch := make(types.ExtractionBatch, 0, len(paths))
	for _, path := range paths {
		entry := types.ExtractedDocument{Path: path}
		if err := ctx.Err(); err != nil {
			entry.Error = err.Error()
			batch = append(batch, entry)
			continue
		}

		doc, err := p.Parse(path)
		if err != nil {
			p.logger.Printf("[PARSER] %v", err)
			entry.Error = err.Error()
		} else {
			entry.Text = doc.Text
			if doc.Text == "" {
				p.logger.Printf("[PARSER] no text extracted from %s", path)
			}
		}
		batch = append(batch, entry)
	}
	return batch
}

// ValidateFiles reports every format or existence violation without failing
func ValidateFiles(paths []string) []Violation {
	var violations []Violation
	for _, path := range paths {
		if !IsSupported(path) {
			violations = append(violations, Violation{
				Path:    path,
				Kind:    ViolationUnsupported,
				Message: fmt.Sprintf("unsupported file format: %s", path),
			})
			continue
		}
		if _, err := os.Stat(path); err != nil {
			violations = append(violations, Violation{
				Path:    path,
				Kind:    ViolationMissing,
				Message: fmt.Sprintf("file not found: %s", path),
			})
		}
	}
	return violations
}

// ValidateBatch checks a batch against limits before any expensive work.
// All violations are collected into a single InputValidationError.
func ValidateBatch(paths []string, limits Limits) error {
	var violations []Violation
	if limits.MaxFiles > 0 && len(paths) > limits.MaxFiles {
		violations = append(violations, Violation{
			Kind:    ViolationTooMany,
			Message: fmt.Sprintf("too many files: %d (max %d)", len(paths), limits.MaxFiles),
		})
	}

	violations = append(violations, ValidateFiles(paths)...)

	if limits.MaxFileSizeBytes > 0 {
		for _, path := range paths {
			info, err := os.Stat(path)
			if err != nil || !IsSupported(path) {
				continue
			}
			if info.Size() > limits.MaxFileSizeBytes {
				violations = append(violations, Violation{
					Path:    path,
					Kind:    ViolationOversized,
					Message: fmt.Sprintf("file too large: %s (%d bytes, max %d)", path, info.Size(), limits.MaxFileSizeBytes),
				})
			}
		}
	}

	if len(violations) > 0 {
		return &InputValidationError{Violations: violations}
	}
	return nil
}

// LoadRoleText accepts either literal role text or a path to a readable file
// holding it. Arguments that name an existing file are read and cleaned.
func LoadRoleText(arg string) (string, error) {
	trimmed := strings.TrimSpace(arg)
	if trimmed == "" {
		return "", nil
	}
	if len(trimmed) < 1024 && !strings.ContainsAny(trimmed, "\n") {
		if info, err := os.Stat(trimmed); err == nil && !info.IsDir() {
			extract, ok := extractors[formatOf(trimmed)]
			if !ok {
				extract = readText
			}
			text, err := extract(trimmed)
			if err != nil {
				return "", fmt.Errorf("failed to read role description: %w", err)
			}
			return CleanText(text), nil
		}
	}
	return trimmed, nil
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

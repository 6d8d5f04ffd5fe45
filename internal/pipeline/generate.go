package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/easycv/internal/fetch"
	"github.com/jonathan/easycv/internal/ingestion"
	"github.com/jonathan/easycv/internal/pipeline/steps"
	"github.com/jonathan/easycv/internal/synthesis"
	"github.com/jonathan/easycv/internal/templating"
	"github.com/jonathan/easycv/internal/types"
)

// Generate builds a new profile version from source documents and a target
// role. Input problems fail before any parsing; per-file extraction
// failures, degraded synthesis and non-markdown render failures only add
// warnings to the manifest.
func (c *Coordinator) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	r, err := c.newRun(steps.OperationGenerate)
	if err != nil {
		return nil, err
	}
	lang := c.languageFor(req.Language)

	// Step 1: inputs
	if err := r.begin(steps.ValidateInputs, fmt.Sprintf("Validating %d document(s)...", len(req.DocumentPaths))); err != nil {
		return nil, err
	}
	if err := ingestion.ValidateBatch(req.DocumentPaths, c.opts.Limits); err != nil {
		return nil, err
	}
	roleText, err := c.loadRoleText(ctx, req.RoleText)
	if err != nil {
		return nil, err
	}
	if roleText == "" {
		return nil, &RequestError{Fields: []string{"'role_text' is required"}}
	}
	styleReference, err := c.loadStyleReference(req.StyleReference)
	if err != nil {
		return nil, err
	}
	var tmpl string
	if req.TemplatePath != "" {
		if tmpl, err = c.templates.Load(req.TemplatePath); err != nil {
			return nil, err
		}
	}
	r.done(steps.ValidateInputs, "", nil)

	// Step 2: parse
	if err := r.begin(steps.ParseDocuments, "Parsing source documents..."); err != nil {
		return nil, err
	}
	batch, warnings, err := c.parseBatch(ctx, req.DocumentPaths, false)
	if err != nil {
		return nil, err
	}
	r.done(steps.ParseDocuments, fmt.Sprintf("Extracted text from %d of %d document(s)", len(batch.NonEmpty()), len(batch)), batch)

	// Step 3: relevant experience
	if err := r.begin(steps.ExtractExperience, "Extracting relevant experience..."); err != nil {
		return nil, err
	}
	content := synthesis.AggregateDocuments(batch)
	if content == "" {
		c.logger.Printf("[PIPELINE] no text extracted from %d document(s), generating from the role description", len(batch))
		warnings = append(warnings, "no text could be extracted from the source documents")
	} else if c.synth.HasModel() {
		extracted, err := c.synth.ExtractRelevantExperience(ctx, batch, roleText, lang)
		if err != nil {
			c.logger.Printf("[PIPELINE] %v, continuing with the raw documents", err)
			warnings = append(warnings, fmt.Sprintf("experience extraction failed, used raw documents: %v", err))
		} else {
			content = extracted
		}
	}
	r.done(steps.ExtractExperience, "", nil)

	// Step 4: style
	if err := r.begin(steps.AnalyzeStyle, "Analyzing reference style..."); err != nil {
		return nil, err
	}
	style := c.synth.AnalyzeStyle(ctx, styleReference)
	if style["analysis"] == synthesis.StyleAnalysisFailed {
		warnings = append(warnings, fmt.Sprintf("style analysis failed: %s", style["error"]))
	}
	r.done(steps.AnalyzeStyle, "", style)

	// Step 5: structured content
	if err := r.begin(steps.GenerateContent, "Generating structured content..."); err != nil {
		return nil, err
	}
	record, report := c.synth.GenerateStructuredContent(ctx, content, roleText, styleReference, lang)
	if report.Err != nil {
		warnings = append(warnings, fmt.Sprintf("structured content from %s fallback: %v", report.Source, report.Err))
	}
	r.done(steps.GenerateContent, fmt.Sprintf("Structured content ready (%s)", report.Source), record)

	// Step 6: template
	if err := r.begin(steps.ApplyTemplate, "Applying template..."); err != nil {
		return nil, err
	}
	var canonical string
	var unresolved []string
	if tmpl != "" {
		applied := c.templates.Apply(tmpl, templating.ContentVariables(record))
		canonical, unresolved = applied.Text, applied.Unresolved
		for _, name := range unresolved {
			warnings = append(warnings, fmt.Sprintf("unresolved template variable: {{%s}}", name))
		}
	} else {
		canonical = synthesis.RenderCanonical(record, lang)
	}
	r.done(steps.ApplyTemplate, "", unresolved)

	result, err := r.renderDocument(ctx, req.ProfileName, canonical, VersionMeta{
		SourceDocuments: batch.Paths(),
		StyleAnalysis:   style,
		Language:        lang,
		Formats:         req.Formats,
		Warnings:        warnings,
	})
	if err != nil {
		return nil, err
	}
	result.Content = &record
	result.Report = &report
	result.Unresolved = unresolved
	return result, nil
}

// parseBatch extracts every document and turns per-file failures into
// warnings. With requireText it fails when no document yielded any text.
func (c *Coordinator) parseBatch(ctx context.Context, paths []string, requireText bool) (types.ExtractionBatch, []string, error) {
	batch := c.parser.ParseBatch(ctx, paths)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var warnings []string
	for _, failed := range batch.Failures() {
		warnings = append(warnings, fmt.Sprintf("failed to extract %s: %s", failed.Path, failed.Error))
	}
	if requireText && len(batch.NonEmpty()) == 0 {
		return nil, nil, fmt.Errorf("no text could be extracted from %d document(s): %w", len(batch), synthesis.ErrNoContent)
	}
	return batch, warnings, nil
}

// loadRoleText accepts literal text, a path to a file holding it, or the
// URL of a job posting
func (c *Coordinator) loadRoleText(ctx context.Context, arg string) (string, error) {
	if !fetch.IsURL(arg) {
		return ingestion.LoadRoleText(arg)
	}
	c.logger.Printf("[PIPELINE] fetching role description from %s", strings.TrimSpace(arg))
	text, err := fetch.RoleText(ctx, strings.TrimSpace(arg), c.fetchOpts)
	if err != nil {
		return "", fmt.Errorf("failed to load role description: %w", err)
	}
	return ingestion.CleanText(text), nil
}

// loadStyleReference accepts literal reference text or a path to a
// supported document
func (c *Coordinator) loadStyleReference(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", nil
	}
	if ingestion.IsSupported(arg) && ingestion.ValidateFiles([]string{arg}) == nil {
		doc, err := c.parser.Parse(arg)
		if err != nil {
			return "", fmt.Errorf("failed to read style reference: %w", err)
		}
		return doc.Text, nil
	}
	return arg, nil
}

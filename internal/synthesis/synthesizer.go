// Package synthesis turns parsed source documents and a target role into
// resume content by prompting a generative model.
package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jonathan/easycv/internal/llm"
	"github.com/jonathan/easycv/internal/prompts"
	"github.com/jonathan/easycv/internal/types"
)

const promptFile = "synthesis.json"

// Source records where the fields of a structured record came from
type Source string

const (
	// SourceModel means the model returned parseable JSON
	SourceModel Source = "model"
	// SourceHeuristic means fields were recovered by the key/value line scanner
	SourceHeuristic Source = "heuristic"
	// SourcePlaceholder means the model call failed or was skipped
	SourcePlaceholder Source = "placeholder"
)

// Report describes how a structured record was produced
type Report struct {
	Source       Source
	Placeholders []string // fields that received placeholder text
	Err          error    // the absorbed service or parse error, if any
}

// Synthesizer builds prompts and calls the model. A nil client disables
// every model call: structured generation then works from the source text alone.
type Synthesizer struct {
	client llm.Client
	logger *log.Logger
}

// New creates a synthesizer. A nil logger uses the standard logger.
func New(client llm.Client, logger *log.Logger) *Synthesizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Synthesizer{client: client, logger: logger}
}

// HasModel reports whether a model client is configured
func (s *Synthesizer) HasModel() bool {
	return s.client != nil
}

// ExtractRelevantExperience asks the model for a relevance-ranked summary of
// the batch under the Experience, Skills, Education and Achievements headings.
// Service failures are returned as *SynthesisError.
func (s *Synthesizer) ExtractRelevantExperience(ctx context.Context, batch types.ExtractionBatch, roleText string, lang types.Language) (string, error) {
	const op = "extraction"
	documents := AggregateDocuments(batch)
	if documents == "" {
		return "", &SynthesisError{Op: op, Cause: ErrNoContent}
	}
	if s.client == nil {
		return "", &SynthesisError{Op: op, Cause: ErrNoClient}
	}

	data := map[string]string{
		"LanguageDirective": Directive(lang),
		"RoleText":          roleText,
		"Documents":         documents,
	}
	messages, err := buildMessages("extract", data)
	if err != nil {
		return "", &SynthesisError{Op: op, Cause: err}
	}

	s.logger.Printf("[SYNTH] extracting relevant experience from %d document(s)", len(batch.NonEmpty()))
	text, err := s.client.GenerateContent(ctx, messages, llm.TierAdvanced)
	if err != nil {
		return "", &SynthesisError{Op: op, Cause: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &SynthesisError{Op: op, Cause: ErrEmptyResponse}
	}
	return text, nil
}

// GenerateStructuredContent requests the nine resume fields as JSON. It never
// fails: unparseable output goes through the line scanner, and a failed call
// yields a record made entirely of placeholders. The Report explains which
// path produced the record.
func (s *Synthesizer) GenerateStructuredContent(ctx context.Context, content, roleText, styleReference string, lang types.Language) (types.StructuredContent, Report) {
	record, report := s.generateStructured(ctx, content, roleText, styleReference, lang)
	if report.Source == SourcePlaceholder {
		record = PlaceholderContent(lang)
	}
	report.Placeholders = fillPlaceholders(&record, lang)

	switch report.Source {
	case SourcePlaceholder:
		s.logger.Printf("[SYNTH] structured generation unavailable, using placeholders: %v", report.Err)
	case SourceHeuristic:
		s.logger.Printf("[SYNTH] recovered %d field(s) by line scan (%v)",
			len(types.ContentFields)-len(report.Placeholders), report.Err)
	}
	return record, report
}

func (s *Synthesizer) generateStructured(ctx context.Context, content, roleText, styleReference string, lang types.Language) (types.StructuredContent, Report) {
	if s.client == nil {
		record := parseKeyValueLines(content)
		return record, Report{Source: SourceHeuristic, Err: ErrNoClient}
	}

	styleSection := ""
	if strings.TrimSpace(styleReference) != "" {
		section, err := prompts.Get(promptFile, "style-section")
		if err != nil {
			return types.StructuredContent{}, Report{Source: SourcePlaceholder, Err: err}
		}
		styleSection = prompts.Format(section, map[string]string{"StyleReference": styleReference})
	}

	data := map[string]string{
		"LanguageDirective":  Directive(lang),
		"RoleText":           roleText,
		"Content":            content,
		"StyleSection":       styleSection,
		"OutputInstructions": llm.BuildOutputInstructions(llm.ResumeContentSchema()),
	}
	messages, err := buildMessages("structured", data)
	if err != nil {
		return types.StructuredContent{}, Report{Source: SourcePlaceholder, Err: err}
	}

	s.logger.Printf("[SYNTH] generating structured content (%s)", lang)
	response, err := s.client.GenerateJSON(ctx, messages, llm.TierStandard)
	if err != nil {
		return types.StructuredContent{}, Report{Source: SourcePlaceholder, Err: err}
	}

	record, err := parseStructuredJSON(response)
	if err != nil {
		return parseKeyValueLines(response), Report{Source: SourceHeuristic, Err: err}
	}
	return record, Report{Source: SourceModel}
}

// UpdateProfile rewrites an existing resume to integrate new documents and,
// optionally, a new target role. Failures are returned as *SynthesisError.
func (s *Synthesizer) UpdateProfile(ctx context.Context, existing string, batch types.ExtractionBatch, roleText string, lang types.Language) (string, error) {
	const op = "update"
	newInformation := AggregateDocuments(batch)
	if strings.TrimSpace(existing) == "" || newInformation == "" {
		return "", &SynthesisError{Op: op, Cause: ErrNoContent}
	}
	if s.client == nil {
		return "", &SynthesisError{Op: op, Cause: ErrNoClient}
	}

	roleSection := ""
	if strings.TrimSpace(roleText) != "" {
		section, err := prompts.Get(promptFile, "update-role-section")
		if err != nil {
			return "", &SynthesisError{Op: op, Cause: err}
		}
		roleSection = prompts.Format(section, map[string]string{"RoleText": roleText})
	}

	data := map[string]string{
		"LanguageDirective": Directive(lang),
		"ExistingResume":    existing,
		"NewInformation":    newInformation,
		"RoleSection":       roleSection,
	}
	messages, err := buildMessages("update", data)
	if err != nil {
		return "", &SynthesisError{Op: op, Cause: err}
	}

	s.logger.Printf("[SYNTH] updating profile with %d new document(s)", len(batch.NonEmpty()))
	text, err := s.client.GenerateContent(ctx, messages, llm.TierAdvanced)
	if err != nil {
		return "", &SynthesisError{Op: op, Cause: err}
	}
	text = strings.TrimSpace(llm.CleanJSONBlock(text))
	if text == "" {
		return "", &SynthesisError{Op: op, Cause: ErrEmptyResponse}
	}
	return text, nil
}

// StyleAnalysisFailed is the analysis value recorded when style analysis fails
const StyleAnalysisFailed = "Style analysis failed"

// AnalyzeStyle describes the formatting of a reference resume. It never
// fails: errors are reported inside the returned map. An empty reference
// returns nil without calling the model.
func (s *Synthesizer) AnalyzeStyle(ctx context.Context, styleReference string) map[string]string {
	if strings.TrimSpace(styleReference) == "" {
		return nil
	}
	if s.client == nil {
		return map[string]string{"analysis": StyleAnalysisFailed, "error": ErrNoClient.Error()}
	}

	messages, err := buildMessages("style", map[string]string{"StyleReference": styleReference})
	if err != nil {
		return map[string]string{"analysis": StyleAnalysisFailed, "error": err.Error()}
	}

	response, err := s.client.GenerateContent(ctx, messages, llm.TierLite)
	if err != nil {
		s.logger.Printf("[SYNTH] style analysis failed: %v", err)
		return map[string]string{"analysis": StyleAnalysisFailed, "error": err.Error()}
	}

	if object, ok := llm.ExtractJSONObject(response); ok {
		if fields, err := decodeStringMap(object); err == nil && len(fields) > 0 {
			return fields
		}
	}
	return map[string]string{"analysis": strings.TrimSpace(response)}
}

// buildMessages loads the system and user prompts of name and fills them
func buildMessages(name string, data map[string]string) ([]llm.Message, error) {
	system, user, err := prompts.Pair(promptFile, name)
	if err != nil {
		return nil, err
	}
	return []llm.Message{
		llm.System(prompts.Format(system, data)),
		llm.User(prompts.Format(user, data)),
	}, nil
}

// parseStructuredJSON decodes a model response into a record. Keys are
// matched through the synonym table so localized keys are accepted.
func parseStructuredJSON(response string) (types.StructuredContent, error) {
	var record types.StructuredContent
	object, ok := llm.ExtractJSONObject(response)
	if !ok {
		return record, fmt.Errorf("response contains no JSON object")
	}

	fields, err := decodeStringMap(object)
	if err != nil {
		return record, err
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	matched := 0
	for _, key := range keys {
		value := fields[key]
		field, ok := fieldForLabel(key)
		if !ok {
			continue
		}
		if existing, _ := record.Get(field); existing != "" {
			continue
		}
		record.Set(field, strings.TrimSpace(value))
		matched++
	}
	if matched == 0 {
		return record, fmt.Errorf("response JSON has no resume fields")
	}
	return record, nil
}

// decodeStringMap decodes a JSON object, flattening non-string values:
// arrays become one "- item" line per element, anything else is re-encoded.
func decodeStringMap(object string) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(object), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = flattenValue(v)
	}
	return out, nil
}

func flattenValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			if s := strings.TrimSpace(flattenValue(item)); s != "" {
				lines = append(lines, "- "+s)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, k+": "+flattenValue(val[k]))
		}
		return strings.Join(lines, "\n")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

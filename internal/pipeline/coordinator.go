// Package pipeline provides the high-level orchestration for resume generation:
// it turns source documents into a new profile version on disk, updates an
// existing version, lists profiles and applies the retention policy.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/easycv/internal/config"
	"github.com/jonathan/easycv/internal/fetch"
	"github.com/jonathan/easycv/internal/ingestion"
	"github.com/jonathan/easycv/internal/pipeline/steps"
	"github.com/jonathan/easycv/internal/rendering"
	"github.com/jonathan/easycv/internal/synthesis"
	"github.com/jonathan/easycv/internal/templating"
	"github.com/jonathan/easycv/internal/types"
)

// ProgressEvent represents a progress update during an operation
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Index mirrors written manifests to an external store. *db.DB satisfies it.
type Index interface {
	SaveProfileVersion(ctx context.Context, m *types.Manifest) error
	DeleteProfileVersion(ctx context.Context, profileName, version string) error
}

// Options holds the settings every operation reads
type Options struct {
	OutputDir    string
	KeepVersions int
	AutoCleanup  bool
	Limits       ingestion.Limits
	Language     types.Language
	Formats      []rendering.Format
}

// OptionsFromConfig converts a validated configuration
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	lang, err := types.ParseLanguage(cfg.Language)
	if err != nil {
		return Options{}, err
	}
	formats, err := rendering.ParseFormats(cfg.Formats)
	if err != nil {
		return Options{}, err
	}
	return Options{
		OutputDir:    cfg.OutputDir,
		KeepVersions: cfg.KeepVersions,
		AutoCleanup:  cfg.AutoCleanup,
		Limits:       cfg.Limits(),
		Language:     lang,
		Formats:      formats,
	}, nil
}

// Dependencies are the components a Coordinator drives. Nil fields get
// working defaults; a nil Index disables mirroring.
type Dependencies struct {
	Parser      *ingestion.Parser
	Synthesizer *synthesis.Synthesizer
	Templates   *templating.Engine
	Renderers   *rendering.Registry
	Index       Index
	Logger      *log.Logger
	OnProgress  ProgressCallback
	Clock       func() time.Time
	Fetch       *fetch.Options // role descriptions given as URLs
}

// Coordinator runs the generate, update, list and cleanup operations
type Coordinator struct {
	opts       Options
	parser     *ingestion.Parser
	synth      *synthesis.Synthesizer
	templates  *templating.Engine
	renderers  *rendering.Registry
	index      Index
	logger     *log.Logger
	onProgress ProgressCallback
	now        func() time.Time
	fetchOpts  *fetch.Options
}

// New creates a coordinator
func New(opts Options, deps Dependencies) (*Coordinator, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if len(opts.Formats) == 0 {
		opts.Formats = rendering.DefaultFormats
	}
	if opts.Language == "" {
		opts.Language = types.LanguageEnglish
	}

	c := &Coordinator{
		opts:       opts,
		parser:     deps.Parser,
		synth:      deps.Synthesizer,
		templates:  deps.Templates,
		renderers:  deps.Renderers,
		index:      deps.Index,
		logger:     logger,
		onProgress: deps.OnProgress,
		now:        deps.Clock,
		fetchOpts:  deps.Fetch,
	}
	if c.parser == nil {
		c.parser = ingestion.NewParser(logger)
	}
	if c.synth == nil {
		c.synth = synthesis.New(nil, logger)
	}
	if c.templates == nil {
		c.templates = templating.NewEngine("templates", logger)
	}
	if c.renderers == nil {
		registry, err := rendering.NewRegistry(rendering.DefaultOptions(), logger)
		if err != nil {
			return nil, err
		}
		c.renderers = registry
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.fetchOpts == nil {
		c.fetchOpts = fetch.DefaultOptions()
	}
	return c, nil
}

// Options returns the coordinator settings
func (c *Coordinator) Options() Options {
	return c.opts
}

// run tracks one operation through its step plan
type run struct {
	c       *Coordinator
	tracker *steps.Tracker
}

func (c *Coordinator) newRun(operation string) (*run, error) {
	tracker, err := steps.NewTracker(operation)
	if err != nil {
		return nil, err
	}
	return &run{c: c, tracker: tracker}, nil
}

// begin announces a step. Dependency violations are programming errors in
// the coordinator and are returned as-is.
func (r *run) begin(step, message string) error {
	index, total, err := r.tracker.Start(step)
	if err != nil {
		return err
	}
	r.c.logger.Printf("[PIPELINE] Step %d/%d: %s", index, total, message)
	r.emit(step, message, index, total, nil)
	return nil
}

// done marks a step finished, attaching optional content to the event
func (r *run) done(step, message string, content any) {
	r.tracker.Complete(step)
	if message == "" && content == nil {
		return
	}
	index, total, _ := r.tracker.Start(step)
	r.emit(step, message, index, total, content)
}

// emit calls the progress callback if configured
func (r *run) emit(step, message string, index, total int, content any) {
	if r.c.onProgress == nil {
		return
	}
	r.c.onProgress(ProgressEvent{
		Step:     step,
		Category: steps.StepRegistry[step].Category,
		Message:  message,
		Index:    index,
		Total:    total,
		Content:  content,
	})
}

// formatsFor resolves requested formats against the defaults. Markdown is
// always produced first since it is the minimum viable output.
func (c *Coordinator) formatsFor(requested []rendering.Format) []rendering.Format {
	if len(requested) == 0 {
		requested = c.opts.Formats
	}
	out := []rendering.Format{rendering.FormatMarkdown}
	seen := map[rendering.Format]bool{rendering.FormatMarkdown: true}
	for _, f := range requested {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func (c *Coordinator) languageFor(requested types.Language) types.Language {
	if requested == "" {
		return c.opts.Language
	}
	return requested
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/easycv/internal/config"
	"github.com/jonathan/easycv/internal/db"
	"github.com/jonathan/easycv/internal/fetch"
	"github.com/jonathan/easycv/internal/ingestion"
	"github.com/jonathan/easycv/internal/llm"
	"github.com/jonathan/easycv/internal/observability"
	"github.com/jonathan/easycv/internal/pipeline"
	"github.com/jonathan/easycv/internal/rendering"
	"github.com/jonathan/easycv/internal/synthesis"
	"github.com/jonathan/easycv/internal/templating"
	"github.com/jonathan/easycv/internal/types"
)

// loadConfig builds the effective configuration: defaults, the --config
// file, environment variables, then flags. override applies the command's
// own flags before validation.
func loadConfig(override func(*config.Config)) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newLogger returns the component logger: stderr in verbose mode, silent otherwise
func newLogger(cfg *config.Config) *log.Logger {
	if cfg.Verbose {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// session holds everything one command needs to drive the coordinator
type session struct {
	cfg         *config.Config
	coordinator *pipeline.Coordinator
	printer     *observability.Printer
	index       *db.DB // nil without a database
	closers     []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// newSession wires the coordinator from cfg. withModel controls whether a
// generative client is created; without an API key the session runs
// without one and says so.
func newSession(ctx context.Context, cmd *cobra.Command, cfg *config.Config, withModel bool) (*session, error) {
	out := cmd.OutOrStdout()
	logger := newLogger(cfg)
	s := &session{cfg: cfg, printer: observability.NewPrinter(out)}

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	var client llm.Client
	if withModel && !noAI {
		if cfg.APIKey == "" {
			_, _ = fmt.Fprintf(out, "Warning: %s is not set; continuing without the generative service\n", config.EnvAPIKey)
		} else {
			client, err = llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
			if err != nil {
				return nil, fmt.Errorf("failed to create LLM client: %w", err)
			}
			s.closers = append(s.closers, func() { _ = client.Close() })
		}
	}

	renderOpts := rendering.DefaultOptions()
	renderOpts.PageTemplate = cfg.PageTemplate
	renderOpts.PDF.Enabled = true
	renderOpts.PDF.Timeout = cfg.Timeout()
	registry, err := rendering.NewRegistry(renderOpts, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	var index pipeline.Index
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err == nil {
			err = database.EnsureSchema(ctx)
			if err != nil {
				database.Close()
			}
		}
		if err != nil {
			_, _ = fmt.Fprintf(out, "Warning: Failed to connect to database: %v\n", err)
			_, _ = fmt.Fprintf(out, "Continuing without the manifest index...\n")
		} else {
			index = database
			s.index = database
			s.closers = append(s.closers, database.Close)
			if cfg.Verbose {
				_, _ = fmt.Fprintf(out, "[VERBOSE] Connected to database\n")
			}
		}
	}

	s.coordinator, err = pipeline.New(opts, pipeline.Dependencies{
		Parser:      ingestion.NewParser(logger),
		Synthesizer: synthesis.New(client, logger),
		Templates:   templating.NewEngine(cfg.TemplateDir, logger),
		Renderers:   registry,
		Index:       index,
		Logger:      logger,
		OnProgress:  progressPrinter(out, s.printer, cfg.Verbose),
		Fetch:       &fetch.Options{Timeout: cfg.Timeout(), UserAgent: fetch.DefaultUserAgent},
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// progressPrinter prints one line per event and, in verbose mode, boxed
// summaries of the parsed documents and the style analysis
func progressPrinter(out io.Writer, printer *observability.Printer, verbose bool) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		_, _ = fmt.Fprintf(out, "Step %d/%d: %s\n", e.Index, e.Total, e.Message)
		if !verbose {
			return
		}
		switch content := e.Content.(type) {
		case types.ExtractionBatch:
			printer.PrintExtraction(content)
		case map[string]string:
			printer.PrintStyleAnalysis(content)
		}
	}
}

// parseFormats converts the --formats flag; an empty list keeps the configured formats
func parseFormats(names []string) ([]rendering.Format, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return rendering.ParseFormats(names)
}

// parseLanguage converts the --language flag; empty keeps the configured language
func parseLanguage(name string) (types.Language, error) {
	if name == "" {
		return "", nil
	}
	return types.ParseLanguage(name)
}

// printResult reports a written version
func (s *session) printResult(out io.Writer, result *pipeline.Result) {
	m := result.Manifest
	_, _ = fmt.Fprintf(out, "\nSaved %s %s to %s\n", m.ProfileName, m.Version, result.Dir)
	if s.cfg.Verbose && result.Content != nil {
		var placeholders []string
		if result.Report != nil {
			placeholders = result.Report.Placeholders
		}
		s.printer.PrintStructuredContent(*result.Content, placeholders)
	}
	s.printer.PrintManifest(m)
	for _, w := range m.Warnings {
		_, _ = fmt.Fprintf(out, "Warning: %s\n", w)
	}
	if len(result.Removed) > 0 {
		_, _ = fmt.Fprintf(out, "Removed %d old version(s): %s\n", len(result.Removed), strings.Join(result.Removed, ", "))
	}
}

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/easycv/internal/pipeline/steps"
	"github.com/jonathan/easycv/internal/rendering"
	"github.com/jonathan/easycv/internal/schemas"
	"github.com/jonathan/easycv/internal/synthesis"
	"github.com/jonathan/easycv/internal/types"
	"github.com/jonathan/easycv/internal/versioning"
)

const (
	// ManifestFile is the name of the per-version metadata file
	ManifestFile = "metadata.json"

	stagingPrefix      = ".staging-"
	maxVersionAttempts = 5
)

var errVersionTaken = errors.New("version directory already exists")

// VersionMeta is the metadata recorded alongside a version's artifacts
type VersionMeta struct {
	SourceDocuments []string
	StyleAnalysis   map[string]string
	PreviousVersion string
	Language        types.Language
	Formats         []rendering.Format
	Warnings        []string
}

// Result describes a written version
type Result struct {
	Manifest   *types.Manifest
	Dir        string
	Artifacts  []*rendering.Artifact
	Removed    []string // versions deleted by auto-cleanup
	Content    *types.StructuredContent
	Report     *synthesis.Report
	Unresolved []string // template placeholders left verbatim
}

// RenderDocument writes canonical text as a new version of profile: every
// requested format is rendered into a staging directory together with the
// manifest, and the directory is then renamed into place. Formats other
// than markdown may fail without failing the version.
func (c *Coordinator) RenderDocument(ctx context.Context, profile, canonical string, meta VersionMeta) (*Result, error) {
	if err := ValidateProfileName(profile); err != nil {
		return nil, err
	}
	r, err := c.newRun(steps.OperationRender)
	if err != nil {
		return nil, err
	}
	return r.renderDocument(ctx, profile, canonical, meta)
}

func (r *run) renderDocument(ctx context.Context, profile, canonical string, meta VersionMeta) (*Result, error) {
	c := r.c
	profileDir := filepath.Join(c.opts.OutputDir, profile)
	if err := os.MkdirAll(profileDir, 0755); err != nil {
		return nil, &PersistenceError{Path: profileDir, Message: "failed to create profile directory", Cause: err}
	}

	existing, err := c.Versions(profile)
	if err != nil {
		return nil, err
	}

	var result *Result
	for attempt := 0; attempt < maxVersionAttempts; attempt++ {
		now := c.now()
		version := versioning.NextAt(existing, now)
		result, err = r.writeVersion(ctx, profile, profileDir, version, now, canonical, meta)
		if err == nil {
			break
		}
		if !errors.Is(err, errVersionTaken) {
			return nil, err
		}
		c.logger.Printf("[PIPELINE] version %s of %s already exists, bumping", version, profile)
		existing = append(existing, version)
	}
	if result == nil {
		return nil, &PersistenceError{Path: profileDir, Message: "could not allocate a new version", Cause: err}
	}

	c.mirror(ctx, result.Manifest)

	if err := r.begin(steps.ApplyRetention, "Applying retention policy..."); err != nil {
		return nil, err
	}
	if c.opts.AutoCleanup && c.opts.KeepVersions > 0 {
		plan, err := c.Cleanup(ctx, profile, c.opts.KeepVersions)
		if err != nil {
			// the new version is already in place
			c.logger.Printf("[PIPELINE] auto-cleanup of %s failed: %v", profile, err)
		}
		result.Removed = plan.Remove
	}
	r.done(steps.ApplyRetention, "", nil)

	return result, nil
}

// writeVersion renders into a fresh staging directory and renames it to
// profileDir/version. It returns errVersionTaken when that directory exists.
func (r *run) writeVersion(ctx context.Context, profile, profileDir, version string, now time.Time, canonical string, meta VersionMeta) (*Result, error) {
	c := r.c
	finalDir := filepath.Join(profileDir, version)
	if _, err := os.Stat(finalDir); err == nil {
		return nil, errVersionTaken
	}

	staging := filepath.Join(profileDir, stagingPrefix+uuid.NewString())
	if err := os.Mkdir(staging, 0755); err != nil {
		return nil, &PersistenceError{Path: staging, Message: "failed to create staging directory", Cause: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(staging)
		}
	}()

	lang := c.languageFor(meta.Language)
	formats := c.formatsFor(meta.Formats)
	if err := r.begin(steps.RenderFormats, fmt.Sprintf("Rendering %s %s in %d format(s)...", profile, version, len(formats))); err != nil {
		return nil, err
	}

	doc := rendering.Document{
		Text:        canonical,
		ProfileName: profile,
		Version:     version,
		CreatedAt:   now,
		Language:    lang,
	}
	base := profile + "." + version

	manifest := &types.Manifest{
		ProfileName:     profile,
		Version:         version,
		CreatedAt:       now.Format(time.RFC3339),
		StyleAnalysis:   meta.StyleAnalysis,
		SourceDocuments: meta.SourceDocuments,
		FilesGenerated:  make(map[string]string),
		Strategies:      make(map[string]string),
		Failures:        make(map[string]string),
		Warnings:        append([]string(nil), meta.Warnings...),
		GenerationID:    uuid.NewString(),
		Language:        lang,
	}
	if versioning.IsValid(meta.PreviousVersion) {
		manifest.PreviousVersion = meta.PreviousVersion
	}

	var artifacts []*rendering.Artifact
	for _, format := range formats {
		renderer, ok := c.renderers.Renderer(format)
		if !ok {
			manifest.Failures[string(format)] = "no renderer registered"
			continue
		}

		artifact, err := renderer.Render(ctx, doc, staging, base)
		if err != nil {
			if format == rendering.FormatMarkdown {
				return nil, &PersistenceError{Path: staging, Message: "failed to write markdown artifact", Cause: err}
			}
			c.logger.Printf("[PIPELINE] %s output failed: %v", format, err)
			manifest.Failures[string(format)] = err.Error()
			manifest.Warnings = append(manifest.Warnings, fmt.Sprintf("%s output failed: %v", format, err))
			continue
		}

		c.logger.Printf("[PIPELINE] %s written with %s strategy", format, artifact.Strategy)
		artifact.Path = filepath.Join(finalDir, filepath.Base(artifact.Path))
		manifest.FilesGenerated[string(format)] = artifact.Path
		manifest.Strategies[string(format)] = artifact.Strategy
		artifacts = append(artifacts, artifact)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.done(steps.RenderFormats, fmt.Sprintf("Rendered %d of %d format(s)", len(artifacts), len(formats)), artifacts)

	if err := r.begin(steps.WriteManifest, "Writing manifest..."); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, &PersistenceError{Path: staging, Message: "failed to encode manifest", Cause: err}
	}
	if err := schemas.ValidateManifest(data); err != nil {
		return nil, &PersistenceError{Path: staging, Message: "manifest failed validation", Cause: err}
	}
	if err := os.WriteFile(filepath.Join(staging, ManifestFile), data, 0644); err != nil {
		return nil, &PersistenceError{Path: staging, Message: "failed to write manifest", Cause: err}
	}

	if err := os.Rename(staging, finalDir); err != nil {
		if _, statErr := os.Stat(finalDir); statErr == nil {
			return nil, errVersionTaken
		}
		return nil, &PersistenceError{Path: finalDir, Message: "failed to move version into place", Cause: err}
	}
	committed = true
	r.done(steps.WriteManifest, fmt.Sprintf("Saved %s", finalDir), manifest)

	return &Result{Manifest: manifest, Dir: finalDir, Artifacts: artifacts}, nil
}

// mirror saves the manifest to the index. Failures are only logged.
func (c *Coordinator) mirror(ctx context.Context, m *types.Manifest) {
	if c.index == nil {
		return
	}
	if err := c.index.SaveProfileVersion(ctx, m); err != nil {
		c.logger.Printf("[PIPELINE] failed to index %s %s: %v", m.ProfileName, m.Version, err)
	}
}

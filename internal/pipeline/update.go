package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/easycv/internal/ingestion"
	"github.com/jonathan/easycv/internal/pipeline/steps"
	"github.com/jonathan/easycv/internal/rendering"
	"github.com/jonathan/easycv/internal/versioning"
)

// previous is a resolved earlier version
type previous struct {
	Profile string
	Version string
	Path    string
	Text    string // canonical text without front matter
}

// Update merges new source documents (and optionally a new target role)
// into an earlier version and writes the result as a new version. The
// earlier version is never modified. Synthesis failures are fatal here.
func (c *Coordinator) Update(ctx context.Context, req UpdateRequest) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.ProfileName == "" && req.PreviousPath == "" {
		return nil, &RequestError{Fields: []string{"either 'profile_name' or 'previous_path' is required"}}
	}
	r, err := c.newRun(steps.OperationUpdate)
	if err != nil {
		return nil, err
	}
	lang := c.languageFor(req.Language)

	if err := r.begin(steps.LoadPrevious, "Loading previous version..."); err != nil {
		return nil, err
	}
	prev, err := c.resolvePrevious(req)
	if err != nil {
		return nil, err
	}
	r.done(steps.LoadPrevious, fmt.Sprintf("Loaded %s %s", prev.Profile, prev.Version), nil)

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
	r.done(steps.ValidateInputs, "", nil)

	if err := r.begin(steps.ParseDocuments, "Parsing new documents..."); err != nil {
		return nil, err
	}
	batch, warnings, err := c.parseBatch(ctx, req.DocumentPaths, true)
	if err != nil {
		return nil, err
	}
	r.done(steps.ParseDocuments, fmt.Sprintf("Extracted text from %d of %d document(s)", len(batch.NonEmpty()), len(batch)), batch)

	if err := r.begin(steps.UpdateContent, "Updating resume content..."); err != nil {
		return nil, err
	}
	updated, err := c.synth.UpdateProfile(ctx, prev.Text, batch, roleText, lang)
	if err != nil {
		return nil, err
	}
	updated = rendering.StripFrontMatter(updated)
	r.done(steps.UpdateContent, "", nil)

	var sources []string
	if prev.Path != "" {
		sources = append(sources, prev.Path)
	}
	sources = append(sources, batch.Paths()...)

	return r.renderDocument(ctx, prev.Profile, updated, VersionMeta{
		SourceDocuments: sources,
		PreviousVersion: prev.Version,
		Language:        lang,
		Formats:         req.Formats,
		Warnings:        warnings,
	})
}

// resolvePrevious locates the earlier markdown text. An explicit path wins;
// otherwise the markdown artifact of the profile's latest version is used.
func (c *Coordinator) resolvePrevious(req UpdateRequest) (*previous, error) {
	prev := &previous{Profile: req.ProfileName, Path: req.PreviousPath}

	if prev.Path == "" {
		m, err := c.LoadManifest(req.ProfileName, "")
		if err != nil {
			return nil, err
		}
		path, ok := m.FilesGenerated[string(rendering.FormatMarkdown)]
		if !ok {
			return nil, fmt.Errorf("%s %s has no markdown artifact", m.ProfileName, m.Version)
		}
		prev.Path = path
		prev.Version = m.Version
	}

	data, err := os.ReadFile(prev.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ingestion.NotFoundError{Path: prev.Path, Cause: err}
		}
		return nil, fmt.Errorf("failed to read previous resume %s: %w", prev.Path, err)
	}
	text := string(data)

	fm, hasFrontMatter := rendering.ExtractFrontMatter(text)
	fileProfile, fileVersion := splitArtifactName(prev.Path)
	if prev.Version == "" {
		switch {
		case hasFrontMatter && versioning.IsValid(fm.Version):
			prev.Version = fm.Version
		default:
			prev.Version = fileVersion
		}
	}
	if prev.Profile == "" {
		switch {
		case fileProfile != "":
			prev.Profile = fileProfile
		case hasFrontMatter && strings.HasSuffix(fm.Title, " Resume"):
			prev.Profile = strings.TrimSuffix(fm.Title, " Resume")
		default:
			prev.Profile = strings.TrimSuffix(filepath.Base(prev.Path), filepath.Ext(prev.Path))
		}
	}
	if err := ValidateProfileName(prev.Profile); err != nil {
		return nil, err
	}

	prev.Text = strings.TrimSpace(rendering.StripFrontMatter(text))
	if prev.Text == "" {
		return nil, fmt.Errorf("previous resume %s is empty", prev.Path)
	}
	return prev, nil
}

// splitArtifactName parses "<profile>.<version>.<ext>". It returns empty
// strings for names that do not follow that layout.
func splitArtifactName(path string) (profile, version string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return "", ""
	}
	if !versioning.IsValid(name[i+1:]) {
		return "", ""
	}
	return name[:i], name[i+1:]
}

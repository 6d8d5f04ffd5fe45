package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/easycv/internal/rendering"
	"github.com/jonathan/easycv/internal/schemas"
	"github.com/jonathan/easycv/internal/types"
)

// VersionCheck reports the state of one stored version
type VersionCheck struct {
	Profile  string                   `json:"profile"`
	Version  string                   `json:"version"`
	Problems []string                 `json:"problems,omitempty"`
	Markdown *rendering.MarkdownStats `json:"markdown,omitempty"`
	Manifest *types.Manifest          `json:"manifest,omitempty"`
}

// OK reports whether the check found no problem
func (v *VersionCheck) OK() bool {
	return len(v.Problems) == 0
}

func (v *VersionCheck) addProblem(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

// CheckVersion validates a version's metadata.json against the manifest
// schema, confirms that every listed artifact exists and analyzes the
// markdown artifact. Findings go into Problems; an error means the version
// could not be located.
func (c *Coordinator) CheckVersion(profile, version string) (*VersionCheck, error) {
	if err := ValidateProfileName(profile); err != nil {
		return nil, err
	}
	if version == "" || strings.ContainsAny(version, `/\`) || strings.HasPrefix(version, ".") {
		return nil, &RequestError{Fields: []string{fmt.Sprintf("invalid version %q", version)}}
	}

	dir := filepath.Join(c.opts.OutputDir, profile, version)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s %s", ErrProfileNotFound, profile, version)
		}
		return nil, &PersistenceError{Path: dir, Message: "failed to read version directory", Cause: err}
	}

	check := &VersionCheck{Profile: profile, Version: version}
	if err := schemas.ValidateManifestFile(filepath.Join(dir, ManifestFile)); err != nil {
		check.addProblem("manifest: %s", strings.TrimSpace(err.Error()))
		return check, nil
	}
	m, err := c.LoadManifest(profile, version)
	if err != nil {
		check.addProblem("manifest: %v", err)
		return check, nil
	}
	check.Manifest = m
	if m.ProfileName != profile || m.Version != version {
		check.addProblem("manifest describes %s %s", m.ProfileName, m.Version)
	}

	formats := make([]string, 0, len(m.FilesGenerated))
	for format := range m.FilesGenerated {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	for _, format := range formats {
		if _, err := os.Stat(m.FilesGenerated[format]); err != nil {
			check.addProblem("%s artifact missing: %s", format, m.FilesGenerated[format])
		}
	}

	path, ok := m.FilesGenerated[string(rendering.FormatMarkdown)]
	if !ok {
		check.addProblem("no markdown artifact")
		return check, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return check, nil
	}
	stats := rendering.AnalyzeMarkdown(string(data))
	check.Markdown = &stats
	if !stats.HasFrontMatter {
		check.addProblem("markdown artifact has no front matter")
	}
	if stats.WordCount == 0 {
		check.addProblem("markdown artifact is empty")
	}
	return check, nil
}

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/easycv/internal/schemas"
	"github.com/jonathan/easycv/internal/types"
	"github.com/jonathan/easycv/internal/versioning"
)

// Versions returns the versions of profile, newest first
func (c *Coordinator) Versions(profile string) ([]string, error) {
	if err := ValidateProfileName(profile); err != nil {
		return nil, err
	}
	dir := filepath.Join(c.opts.OutputDir, profile)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, profile)
		}
		return nil, &PersistenceError{Path: dir, Message: "failed to read profile directory", Cause: err}
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "v") {
			versions = append(versions, entry.Name())
		}
	}
	return versioning.Sort(versions, true), nil
}

// LoadManifest reads the manifest of a version. An empty version selects
// the latest one.
func (c *Coordinator) LoadManifest(profile, version string) (*types.Manifest, error) {
	if version == "" {
		versions, err := c.Versions(profile)
		if err != nil {
			return nil, err
		}
		if len(versions) == 0 {
			return nil, fmt.Errorf("%w: %s has no versions", ErrProfileNotFound, profile)
		}
		version = versions[0]
	} else if err := ValidateProfileName(profile); err != nil {
		return nil, err
	} else if strings.ContainsAny(version, `/\`) || strings.HasPrefix(version, ".") {
		return nil, &RequestError{Fields: []string{fmt.Sprintf("invalid version %q", version)}}
	}

	path := filepath.Join(c.opts.OutputDir, profile, version, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no manifest for %s %s", ErrProfileNotFound, profile, version)
		}
		return nil, &PersistenceError{Path: path, Message: "failed to read manifest", Cause: err}
	}
	if err := schemas.ValidateManifest(data); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	var m types.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// List reports every profile under the output directory with its latest
// version and version count, sorted by name. A missing output directory
// yields an empty list.
func (c *Coordinator) List(ctx context.Context) ([]types.ProfileSummary, error) {
	entries, err := os.ReadDir(c.opts.OutputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &PersistenceError{Path: c.opts.OutputDir, Message: "failed to read output directory", Cause: err}
	}

	var summaries []types.ProfileSummary
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if !entry.IsDir() || ValidateProfileName(name) != nil {
			continue
		}
		versions, err := c.Versions(name)
		if err != nil || len(versions) == 0 {
			continue
		}

		summary := types.ProfileSummary{
			Name:          name,
			LatestVersion: versions[0],
			TotalVersions: len(versions),
			OutputDir:     filepath.Join(c.opts.OutputDir, name),
		}
		if m, err := c.LoadManifest(name, versions[0]); err == nil {
			summary.Manifest = m
			summary.LastUpdated = m.CreatedAt
		} else {
			c.logger.Printf("[PIPELINE] %s %s: %v", name, versions[0], err)
			if info := versioning.Describe(versions[0]); info.Valid {
				summary.LastUpdated = info.Timestamp
			}
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// Cleanup keeps the keep most recent versions of profile and deletes the
// directories of the rest. Removal stops at the first failure.
func (c *Coordinator) Cleanup(ctx context.Context, profile string, keep int) (versioning.CleanupPlan, error) {
	if keep < 1 {
		return versioning.CleanupPlan{}, &RequestError{Fields: []string{fmt.Sprintf("'keep' must be at least 1, got %d", keep)}}
	}
	versions, err := c.Versions(profile)
	if err != nil {
		return versioning.CleanupPlan{}, err
	}

	plan := versioning.Cleanup(versions, keep)
	removed := make([]string, 0, len(plan.Remove))
	for _, version := range plan.Remove {
		dir := filepath.Join(c.opts.OutputDir, profile, version)
		if err := os.RemoveAll(dir); err != nil {
			plan.Remove = removed
			return plan, &PersistenceError{Path: dir, Message: "failed to remove version", Cause: err}
		}
		c.logger.Printf("[PIPELINE] removed %s %s", profile, version)
		removed = append(removed, version)

		if c.index != nil {
			if err := c.index.DeleteProfileVersion(ctx, profile, version); err != nil {
				c.logger.Printf("[PIPELINE] failed to remove %s %s from index: %v", profile, version, err)
			}
		}
	}
	return plan, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/easycv/internal/config"
	"github.com/jonathan/easycv/internal/pipeline"
	"github.com/jonathan/easycv/internal/versioning"
)

var listCommand = &cobra.Command{
	Use:   "list",
	Short: "List profiles with their latest version",
	RunE:  runList,
}

var versionsCommand = &cobra.Command{
	Use:   "versions",
	Short: "List every version of a profile, newest first",
	RunE:  runVersions,
}

var cleanupCommand = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete all but the most recent versions of a profile",
	RunE:  runCleanup,
}

var (
	listDetailed  bool
	listJSON      bool
	listOutputDir string

	versionsProfile   string
	versionsCheck     bool
	versionsOutputDir string

	cleanupProfile   string
	cleanupKeep      int
	cleanupDryRun    bool
	cleanupOutputDir string
)

func init() {
	listCommand.Flags().BoolVar(&listDetailed, "detailed", false, "Show the artifacts of each latest version")
	listCommand.Flags().BoolVar(&listJSON, "json", false, "Print the listing as JSON")
	listCommand.Flags().StringVarP(&listOutputDir, "output-dir", "o", "", "Root directory of the profiles tree")

	versionsCommand.Flags().StringVarP(&versionsProfile, "profile", "p", "", "Profile name (required)")
	versionsCommand.Flags().BoolVar(&versionsCheck, "check", false, "Validate each version's manifest and artifacts")
	versionsCommand.Flags().StringVarP(&versionsOutputDir, "output-dir", "o", "", "Root directory of the profiles tree")
	if err := versionsCommand.MarkFlagRequired("profile"); err != nil {
		panic(err)
	}

	cleanupCommand.Flags().StringVarP(&cleanupProfile, "profile", "p", "", "Profile name (required)")
	cleanupCommand.Flags().IntVarP(&cleanupKeep, "keep", "k", 0, "Versions to keep (defaults to keep_versions)")
	cleanupCommand.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Show what would be removed without deleting anything")
	cleanupCommand.Flags().StringVarP(&cleanupOutputDir, "output-dir", "o", "", "Root directory of the profiles tree")
	if err := cleanupCommand.MarkFlagRequired("profile"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(listCommand)
	rootCmd.AddCommand(versionsCommand)
	rootCmd.AddCommand(cleanupCommand)
}

// outputDirOverride applies an --output-dir flag when it was given
func outputDirOverride(cmd *cobra.Command, dir string) func(*config.Config) {
	return func(c *config.Config) {
		if cmd.Flags().Changed("output-dir") {
			c.OutputDir = dir
		}
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(outputDirOverride(cmd, listOutputDir))
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cmd, cfg, false)
	if err != nil {
		return err
	}
	defer s.Close()

	profiles, err := s.coordinator.List(ctx)
	if err != nil {
		return err
	}

	if listJSON {
		if !listDetailed {
			for i := range profiles {
				profiles[i].Manifest = nil
			}
		}
		data, err := json.MarshalIndent(profiles, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode profiles: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}

	s.printer.PrintProfiles(profiles)
	if listDetailed {
		for _, p := range profiles {
			s.printer.PrintManifest(p.Manifest)
		}
	}
	return nil
}

func runVersions(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(outputDirOverride(cmd, versionsOutputDir))
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cmd, cfg, false)
	if err != nil {
		return err
	}
	defer s.Close()

	versions, err := s.coordinator.Versions(versionsProfile)
	if err != nil {
		return err
	}
	indexed := s.indexedVersions(ctx, out, versionsProfile)

	failed := 0
	for _, v := range versions {
		line := v
		if info := versioning.Describe(v); info.Valid {
			line = fmt.Sprintf("%s  %s %s", v, info.Date, info.Time)
		}
		if _, ok := indexed[v]; ok {
			line += "  [indexed]"
			delete(indexed, v)
		}
		_, _ = fmt.Fprintln(out, line)

		if versionsCheck {
			check, err := s.checkVersion(ctx, versionsProfile, v)
			if err != nil {
				return err
			}
			if !check.OK() {
				failed++
			}
			printCheck(out, check)
		}
	}

	orphans := make([]string, 0, len(indexed))
	for v := range indexed {
		orphans = append(orphans, v)
	}
	for _, v := range versioning.Sort(orphans, true) {
		_, _ = fmt.Fprintf(out, "%s  [indexed, not on disk]\n", v)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d version(s) of %s failed the check", failed, len(versions), versionsProfile)
	}
	return nil
}

// indexedVersions returns the versions the manifest index holds for
// profile. Without an index, or when the query fails, it is empty.
func (s *session) indexedVersions(ctx context.Context, out io.Writer, profile string) map[string]struct{} {
	indexed := make(map[string]struct{})
	if s.index == nil {
		return indexed
	}
	rows, err := s.index.ListProfileVersions(ctx, profile)
	if err != nil {
		_, _ = fmt.Fprintf(out, "Warning: %v\n", err)
		return indexed
	}
	for _, row := range rows {
		indexed[row.Version] = struct{}{}
	}
	return indexed
}

// checkVersion checks a version on disk and, with an index, that the index
// holds the same generation
func (s *session) checkVersion(ctx context.Context, profile, version string) (*pipeline.VersionCheck, error) {
	check, err := s.coordinator.CheckVersion(profile, version)
	if err != nil || s.index == nil || check.Manifest == nil {
		return check, err
	}

	row, err := s.index.GetProfileVersion(ctx, profile, version)
	switch {
	case err != nil:
		check.Problems = append(check.Problems, fmt.Sprintf("index: %v", err))
	case row == nil:
		check.Problems = append(check.Problems, "not in the manifest index")
	default:
		stored, err := row.DecodeManifest()
		if err != nil {
			check.Problems = append(check.Problems, fmt.Sprintf("index: undecodable manifest: %v", err))
		} else if stored.GenerationID != check.Manifest.GenerationID {
			check.Problems = append(check.Problems, fmt.Sprintf("index holds generation %s, disk holds %s", stored.GenerationID, check.Manifest.GenerationID))
		}
	}
	return check, nil
}

func printCheck(out io.Writer, check *pipeline.VersionCheck) {
	if check.OK() {
		artifacts := 0
		if check.Manifest != nil {
			artifacts = len(check.Manifest.FilesGenerated)
		}
		words := 0
		if check.Markdown != nil {
			words = check.Markdown.WordCount
		}
		_, _ = fmt.Fprintf(out, "    ✓ %d artifact(s), %d words\n", artifacts, words)
		return
	}
	for _, problem := range check.Problems {
		_, _ = fmt.Fprintf(out, "    ✗ %s\n", strings.ReplaceAll(problem, "\n", " "))
	}
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(outputDirOverride(cmd, cleanupOutputDir))
	if err != nil {
		return err
	}
	keep := cfg.KeepVersions
	if cmd.Flags().Changed("keep") {
		keep = cleanupKeep
	}

	s, err := newSession(ctx, cmd, cfg, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if cleanupDryRun {
		versions, err := s.coordinator.Versions(cleanupProfile)
		if err != nil {
			return err
		}
		if keep < 1 {
			return fmt.Errorf("--keep must be at least 1, got %d", keep)
		}
		plan := versioning.Cleanup(versions, keep)
		_, _ = fmt.Fprintf(out, "Would keep %d and remove %d version(s) of %s\n", len(plan.Keep), len(plan.Remove), cleanupProfile)
		for _, v := range plan.Remove {
			_, _ = fmt.Fprintf(out, "  - %s\n", v)
		}
		return nil
	}

	plan, err := s.coordinator.Cleanup(ctx, cleanupProfile, keep)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Kept %d and removed %d version(s) of %s\n", len(plan.Keep), len(plan.Remove), cleanupProfile)
	for _, v := range plan.Remove {
		_, _ = fmt.Fprintf(out, "  - %s\n", v)
	}
	return nil
}

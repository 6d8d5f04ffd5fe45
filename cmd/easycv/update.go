package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/easycv/internal/pipeline"
)

var updateCommand = &cobra.Command{
	Use:   "update",
	Short: "Merge new documents into an existing resume as a new version",
	Long: `Loads an earlier version (a markdown file given with --old-profile, or the latest
version of --profile), merges the new documents into it and writes the result
as a new version. The earlier version is never modified.`,
	Example: `  easycv update -p jane -d new-project.md
  easycv update --old-profile profiles/jane/v202401010900/jane.v202401010900.md -d award.pdf -r role.txt`,
	RunE: runUpdate,
}

var (
	updOldProfile string
	updProfile    string
	updDocs       []string
	updRole       string
	updFormats    []string
	updLanguage   string
	updOutputDir  string
)

func init() {
	updateCommand.Flags().StringVar(&updOldProfile, "old-profile", "", "Path to the earlier markdown resume")
	updateCommand.Flags().StringVarP(&updProfile, "profile", "p", "", "Profile name (defaults to the one recorded in --old-profile)")
	updateCommand.Flags().StringSliceVarP(&updDocs, "docs", "d", nil, "New source documents; repeatable")
	updateCommand.Flags().StringVarP(&updRole, "role", "r", "", "New target role text, a file holding it, or a job posting URL")
	updateCommand.Flags().StringSliceVarP(&updFormats, "formats", "f", nil, "Output formats (markdown, word, html, pdf)")
	updateCommand.Flags().StringVarP(&updLanguage, "language", "l", "", "Output language (english, chinese, bilingual)")
	updateCommand.Flags().StringVarP(&updOutputDir, "output-dir", "o", "", "Root directory of the profiles tree")

	if err := updateCommand.MarkFlagRequired("docs"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(updateCommand)
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	if updOldProfile == "" && updProfile == "" {
		return fmt.Errorf("either --old-profile or --profile is required")
	}

	cfg, err := loadConfig(outputDirOverride(cmd, updOutputDir))
	if err != nil {
		return err
	}
	formats, err := parseFormats(updFormats)
	if err != nil {
		return err
	}
	language, err := parseLanguage(updLanguage)
	if err != nil {
		return err
	}

	s, err := newSession(ctx, cmd, cfg, true)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.coordinator.Update(ctx, pipeline.UpdateRequest{
		ProfileName:   updProfile,
		PreviousPath:  updOldProfile,
		DocumentPaths: updDocs,
		RoleText:      updRole,
		Formats:       formats,
		Language:      language,
	})
	if err != nil {
		return err
	}

	s.printResult(out, result)
	return nil
}

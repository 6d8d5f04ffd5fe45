package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/easycv/internal/pipeline"
)

var generateCommand = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new resume version from source documents",
	Long: `Parses the source documents, extracts experience relevant to the target role, synthesizes
structured resume content and renders it in every requested format under
<output-dir>/<profile>/<version>/.

The role may be given as literal text, as a path to a file holding it, or as the URL
of a job posting.`,
	Example: `  easycv generate -p jane -d cv.pdf -d projects.md -r "Senior backend engineer"
  easycv generate -p jane -d cv.docx -r role.txt -t modern.md -f markdown,html,pdf`,
	RunE: runGenerate,
}

var (
	genProfile   string
	genDocs      []string
	genRole      string
	genTemplate  string
	genStyle     string
	genFormats   []string
	genLanguage  string
	genOutputDir string
)

func init() {
	generateCommand.Flags().StringVarP(&genProfile, "profile", "p", "", "Profile name (required)")
	generateCommand.Flags().StringSliceVarP(&genDocs, "docs", "d", nil, "Source documents (pdf, docx, md, txt, html); repeatable")
	generateCommand.Flags().StringVarP(&genRole, "role", "r", "", "Target role text, a file holding it, or a job posting URL (required)")
	generateCommand.Flags().StringVarP(&genTemplate, "template", "t", "", "Template name or path")
	generateCommand.Flags().StringVarP(&genStyle, "style", "s", "", "Reference resume text or file to match in style")
	generateCommand.Flags().StringSliceVarP(&genFormats, "formats", "f", nil, "Output formats (markdown, word, html, pdf)")
	generateCommand.Flags().StringVarP(&genLanguage, "language", "l", "", "Output language (english, chinese, bilingual)")
	generateCommand.Flags().StringVarP(&genOutputDir, "output-dir", "o", "", "Root directory of the profiles tree")

	if err := generateCommand.MarkFlagRequired("profile"); err != nil {
		panic(err)
	}
	if err := generateCommand.MarkFlagRequired("docs"); err != nil {
		panic(err)
	}
	if err := generateCommand.MarkFlagRequired("role"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(generateCommand)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(outputDirOverride(cmd, genOutputDir))
	if err != nil {
		return err
	}
	formats, err := parseFormats(genFormats)
	if err != nil {
		return err
	}
	language, err := parseLanguage(genLanguage)
	if err != nil {
		return err
	}

	s, err := newSession(ctx, cmd, cfg, true)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.coordinator.Generate(ctx, pipeline.GenerateRequest{
		ProfileName:    genProfile,
		DocumentPaths:  genDocs,
		RoleText:       genRole,
		TemplatePath:   genTemplate,
		StyleReference: genStyle,
		Formats:        formats,
		Language:       language,
	})
	if err != nil {
		return err
	}

	s.printResult(out, result)
	if genTemplate != "" {
		s.printer.PrintUnresolved(result.Unresolved)
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/easycv/internal/templating"
	"github.com/jonathan/easycv/internal/types"
)

var templateCommand = &cobra.Command{
	Use:   "template",
	Short: "Inspect and manage resume templates",
	Long: `Templates are markdown files with {{field}} placeholders. Names are resolved
against template_dir; paths are used as given.`,
}

var templateValidateCommand = &cobra.Command{
	Use:   "validate <template>",
	Short: "Report the sections and placeholders of a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateValidate,
}

var templateListCommand = &cobra.Command{
	Use:   "list",
	Short: "List the templates in the template directory",
	Args:  cobra.NoArgs,
	RunE:  runTemplateList,
}

var templateDefaultCommand = &cobra.Command{
	Use:   "default",
	Short: "Print or save the built-in template",
	Args:  cobra.NoArgs,
	RunE:  runTemplateDefault,
}

var templateMergeCommand = &cobra.Command{
	Use:   "merge <primary> <secondary>",
	Short: "Append one template to another",
	Args:  cobra.ExactArgs(2),
	RunE:  runTemplateMerge,
}

var templateBackupCommand = &cobra.Command{
	Use:   "backup <template>",
	Short: "Copy a template to a timestamped backup next to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateBackup,
}

var (
	templateJSON     bool
	templateLanguage string
	templateSaveAs   string
)

func init() {
	templateValidateCommand.Flags().BoolVar(&templateJSON, "json", false, "Print the report as JSON")
	templateDefaultCommand.Flags().StringVarP(&templateLanguage, "language", "l", "", "Heading language (english, chinese, bilingual)")
	templateDefaultCommand.Flags().StringVar(&templateSaveAs, "save-as", "", "Save into the template directory under this name instead of printing")
	templateMergeCommand.Flags().StringVar(&templateSaveAs, "save-as", "", "Save into the template directory under this name instead of printing")

	templateCommand.AddCommand(templateValidateCommand)
	templateCommand.AddCommand(templateListCommand)
	templateCommand.AddCommand(templateDefaultCommand)
	templateCommand.AddCommand(templateMergeCommand)
	templateCommand.AddCommand(templateBackupCommand)
	rootCmd.AddCommand(templateCommand)
}

// newTemplateEngine returns the engine for the configured template dir
// and the configured language
func newTemplateEngine() (*templating.Engine, types.Language, error) {
	cfg, err := loadConfig(nil)
	if err != nil {
		return nil, "", err
	}
	lang, err := types.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, "", err
	}
	return templating.NewEngine(cfg.TemplateDir, newLogger(cfg)), lang, nil
}

func runTemplateValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	engine, _, err := newTemplateEngine()
	if err != nil {
		return err
	}
	tmpl, err := engine.Load(args[0])
	if err != nil {
		return err
	}

	v := templating.Validate(tmpl)
	if templateJSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
	} else {
		_, _ = fmt.Fprintf(out, "Lines:     %d\n", v.TotalLines)
		_, _ = fmt.Fprintf(out, "Variables: %d\n", v.VariableCount)
		_, _ = fmt.Fprintf(out, "Found:     %s\n", strings.Join(v.FoundSections, ", "))
		_, _ = fmt.Fprintf(out, "Missing:   %s\n", strings.Join(v.MissingSections, ", "))
	}

	if !v.Valid {
		return fmt.Errorf("template %s is not valid: it needs at least one placeholder and one recognized section", args[0])
	}
	_, _ = fmt.Fprintf(out, "✓ Template %s is valid\n", args[0])
	return nil
}

func runTemplateList(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	engine, _, err := newTemplateEngine()
	if err != nil {
		return err
	}
	names, err := engine.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		_, _ = fmt.Fprintf(out, "No templates in %s\n", engine.Dir())
		return nil
	}
	for _, name := range names {
		_, _ = fmt.Fprintln(out, name)
	}
	return nil
}

func runTemplateDefault(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	engine, lang, err := newTemplateEngine()
	if err != nil {
		return err
	}
	if templateLanguage != "" {
		if lang, err = types.ParseLanguage(templateLanguage); err != nil {
			return err
		}
	}
	return emitTemplate(out, engine, templating.DefaultTemplate(lang))
}

func runTemplateMerge(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	engine, _, err := newTemplateEngine()
	if err != nil {
		return err
	}
	primary, err := engine.Load(args[0])
	if err != nil {
		return err
	}
	secondary, err := engine.Load(args[1])
	if err != nil {
		return err
	}
	return emitTemplate(out, engine, templating.Merge(primary, secondary))
}

func runTemplateBackup(cmd *cobra.Command, args []string) error {
	engine, _, err := newTemplateEngine()
	if err != nil {
		return err
	}
	path, err := engine.Backup(args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Backed up %s to %s\n", args[0], path)
	return nil
}

// emitTemplate prints tmpl, or saves it when --save-as is set
func emitTemplate(out io.Writer, engine *templating.Engine, tmpl string) error {
	if templateSaveAs == "" {
		_, _ = fmt.Fprint(out, tmpl)
		return nil
	}
	path, err := engine.Create(tmpl, templateSaveAs)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ Saved template to %s\n", path)
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/easycv/internal/config"
)

var configCommand = &cobra.Command{
	Use:   "config",
	Short: "Show, validate or create configuration",
}

var configShowCommand = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCommand = &cobra.Command{
	Use:   "validate",
	Short: "Check the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configSampleCommand = &cobra.Command{
	Use:   "sample <path>",
	Short: "Write the default configuration to a .json or .yaml file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSample,
}

func init() {
	configCommand.AddCommand(configShowCommand)
	configCommand.AddCommand(configValidateCommand)
	configCommand.AddCommand(configSampleCommand)
	rootCmd.AddCommand(configCommand)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	data, err := cfg.Masked().JSON()
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "✓ Configuration is valid")
	if cfg.APIKey == "" {
		_, _ = fmt.Fprintf(out, "Warning: %s is not set; generate and update will run without the generative service\n", config.EnvAPIKey)
	}
	return nil
}

func runConfigSample(cmd *cobra.Command, args []string) error {
	if err := config.WriteSample(args[0]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote sample configuration to %s\n", args[0])
	return nil
}

// Package main provides the entry point for the easycv command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "easycv",
	Short: "Versioned multi-format resume generator",
	Long: `easycv parses your existing documents, synthesizes resume content tailored to a target role,
and renders it to Markdown, Word, HTML and PDF under an immutable version history.

Configuration is read from defaults, then --config, then environment variables, then flags.`,
	SilenceUsage: true,
}

var (
	configPath string
	verbose    bool
	noAI       bool
	apiKey     string
	dbURL      string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress and component logs")
	rootCmd.PersistentFlags().BoolVar(&noAI, "no-ai", false, "Skip the generative service and work from the source text only")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL URL of the manifest index (optional, defaults to DATABASE_URL env var)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

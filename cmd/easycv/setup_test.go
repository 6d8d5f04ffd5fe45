package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/easycv/internal/config"
	"github.com/jonathan/easycv/internal/observability"
	"github.com/jonathan/easycv/internal/pipeline"
	"github.com/jonathan/easycv/internal/rendering"
	"github.com/jonathan/easycv/internal/types"
)

// resetGlobalFlags restores the persistent flag variables after a test
func resetGlobalFlags(t *testing.T) {
	t.Helper()
	saved := []any{configPath, verbose, noAI, apiKey, dbURL}
	t.Cleanup(func() {
		configPath = saved[0].(string)
		verbose = saved[1].(bool)
		noAI = saved[2].(bool)
		apiKey = saved[3].(string)
		dbURL = saved[4].(string)
	})
	configPath, verbose, noAI, apiKey, dbURL = "", false, false, "", ""
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvOutputDir, config.EnvTemplateDir, config.EnvKeepVersions, config.EnvLanguage,
		config.EnvModel, config.EnvProvider, config.EnvAPIKey, config.EnvDatabaseURL,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	resetGlobalFlags(t)
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "easycv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: from-file\nkeep_versions: 3\nlanguage: chinese\n"), 0644))

	configPath = path
	t.Setenv(config.EnvOutputDir, "from-env")
	apiKey = "flag-key"

	cfg, err := loadConfig(func(c *config.Config) { c.OutputDir = "from-flag" })
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.OutputDir)
	assert.Equal(t, 3, cfg.KeepVersions)
	assert.Equal(t, "chinese", cfg.Language)
	assert.Equal(t, "flag-key", cfg.APIKey)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	resetGlobalFlags(t)
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "easycv.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"output_dir": "from-file"}`), 0644))
	configPath = path
	t.Setenv(config.EnvOutputDir, "from-env")

	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OutputDir)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	resetGlobalFlags(t)
	clearEnv(t)

	t.Setenv(config.EnvKeepVersions, "0")
	_, err := loadConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keep_versions")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	resetGlobalFlags(t)
	clearEnv(t)

	configPath = filepath.Join(t.TempDir(), "missing.json")
	_, err := loadConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestLoadConfig_VerboseFlag(t *testing.T) {
	resetGlobalFlags(t)
	clearEnv(t)

	verbose = true
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []rendering.Format
		wantErr bool
	}{
		{name: "empty keeps configured", input: nil, want: nil},
		{name: "aliases", input: []string{"md", "docx", "web"}, want: []rendering.Format{rendering.FormatMarkdown, rendering.FormatWord, rendering.FormatHTML}},
		{name: "duplicates dropped", input: []string{"pdf", "pdf"}, want: []rendering.Format{rendering.FormatPDF}},
		{name: "unknown", input: []string{"odt"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFormats(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLanguage(t *testing.T) {
	lang, err := parseLanguage("")
	require.NoError(t, err)
	assert.Equal(t, types.Language(""), lang)

	lang, err = parseLanguage("zh")
	require.NoError(t, err)
	assert.Equal(t, types.LanguageChinese, lang)

	_, err = parseLanguage("klingon")
	assert.Error(t, err)
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	printer := observability.NewPrinter(&buf)

	quiet := progressPrinter(&buf, printer, false)
	quiet(pipeline.ProgressEvent{Message: "Parsing source documents...", Index: 2, Total: 9, Content: types.ExtractionBatch{{Path: "cv.md", Text: "hello"}}})
	assert.Equal(t, "Step 2/9: Parsing source documents...\n", buf.String())

	buf.Reset()
	loud := progressPrinter(&buf, printer, true)
	loud(pipeline.ProgressEvent{Message: "Extracted text", Index: 2, Total: 9, Content: types.ExtractionBatch{{Path: "cv.md", Text: "hello"}}})
	assert.Contains(t, buf.String(), "Step 2/9: Extracted text")
	assert.Contains(t, buf.String(), "PARSED DOCUMENTS")

	buf.Reset()
	loud(pipeline.ProgressEvent{Message: "Style", Index: 4, Total: 9, Content: map[string]string{"tone": "formal"}})
	assert.Contains(t, buf.String(), "tone")
}

package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/easycv/internal/types"
)

// runCLI runs the binary in dir without the generative service or the index
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinaryPath(t), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GEMINI_API_KEY=",
		"DATABASE_URL=",
		"EASYCV_OUTPUT_DIR=",
		"EASYCV_TEMPLATE_DIR=",
	)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func writeSources(t *testing.T, dir string) (string, string) {
	t.Helper()
	cv := filepath.Join(dir, "cv.md")
	role := filepath.Join(dir, "role.txt")
	require.NoError(t, os.WriteFile(cv, []byte("# Jane Doe\n\nEmail: jane@example.com\n\n## Experience\n- Built payment APIs in Go\n- Led a team of four\n\n## Skills\nGo, PostgreSQL, Kubernetes\n"), 0644))
	require.NoError(t, os.WriteFile(role, []byte("Senior backend engineer working on Go services"), 0644))
	return cv, role
}

func TestGenerateCommand_MissingProfileFlag(t *testing.T) {
	dir := t.TempDir()
	output, err := runCLI(t, dir, "generate", "--docs", "cv.md", "--role", "engineer")

	assert.Error(t, err)
	assert.Contains(t, output, "required flag(s) \"profile\" not set")
}

func TestGenerateCommand_MissingDocument(t *testing.T) {
	dir := t.TempDir()
	output, err := runCLI(t, dir, "generate", "--no-ai",
		"--profile", "jane",
		"--docs", filepath.Join(dir, "missing.pdf"),
		"--role", "engineer")

	assert.Error(t, err)
	assert.Contains(t, output, "input validation failed")
}

func TestGenerateCommand_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	cv, role := writeSources(t, dir)
	output, err := runCLI(t, dir, "generate", "--no-ai",
		"-p", "jane", "-d", cv, "-r", role, "-f", "odt")

	assert.Error(t, err)
	assert.Contains(t, output, "unsupported output format")
}

func TestGenerateCommand_WritesVersion(t *testing.T) {
	dir := t.TempDir()
	cv, role := writeSources(t, dir)
	outDir := filepath.Join(dir, "profiles")

	output, err := runCLI(t, dir, "generate", "--no-ai",
		"-p", "jane", "-d", cv, "-r", role, "-o", outDir, "-f", "markdown,html")
	require.NoError(t, err, output)

	assert.Contains(t, output, "Step 1/9")
	assert.Contains(t, output, "GENERATED ARTIFACTS")

	manifests, err := filepath.Glob(filepath.Join(outDir, "jane", "v*", "metadata.json"))
	require.NoError(t, err)
	require.Len(t, manifests, 1)

	data, err := os.ReadFile(manifests[0])
	require.NoError(t, err)
	var m types.Manifest
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "jane", m.ProfileName)
	assert.Contains(t, m.FilesGenerated, "markdown")
	assert.Contains(t, m.FilesGenerated, "html")
	assert.FileExists(t, m.FilesGenerated["markdown"])
	assert.Equal(t, []string{cv}, m.SourceDocuments)
}

func TestUpdateCommand_RequiresPrevious(t *testing.T) {
	dir := t.TempDir()
	cv, _ := writeSources(t, dir)
	output, err := runCLI(t, dir, "update", "--no-ai", "-d", cv)

	assert.Error(t, err)
	assert.Contains(t, output, "either --old-profile or --profile is required")
}

func TestUpdateCommand_NeedsGenerativeService(t *testing.T) {
	dir := t.TempDir()
	cv, role := writeSources(t, dir)
	outDir := filepath.Join(dir, "profiles")

	output, err := runCLI(t, dir, "generate", "--no-ai", "-p", "jane", "-d", cv, "-r", role, "-o", outDir, "-f", "markdown")
	require.NoError(t, err, output)

	extra := filepath.Join(dir, "award.txt")
	require.NoError(t, os.WriteFile(extra, []byte("Engineer of the year 2023"), 0644))

	output, err = runCLI(t, dir, "update", "--no-ai", "-p", "jane", "-d", extra, "-o", outDir)
	assert.Error(t, err)
	assert.Contains(t, output, "synthesis update failed")

	manifests, err := filepath.Glob(filepath.Join(outDir, "jane", "v*", "metadata.json"))
	require.NoError(t, err)
	assert.Len(t, manifests, 1)
}

func TestListCommand_Empty(t *testing.T) {
	dir := t.TempDir()
	output, err := runCLI(t, dir, "list", "-o", filepath.Join(dir, "profiles"))

	require.NoError(t, err, output)
	assert.Contains(t, output, "NO PROFILES FOUND")
}

func TestListAndVersionsCommands(t *testing.T) {
	dir := t.TempDir()
	cv, role := writeSources(t, dir)
	outDir := filepath.Join(dir, "profiles")

	for i := 0; i < 2; i++ {
		output, err := runCLI(t, dir, "generate", "--no-ai", "-p", "jane", "-d", cv, "-r", role, "-o", outDir, "-f", "markdown")
		require.NoError(t, err, output)
	}

	output, err := runCLI(t, dir, "list", "--json", "-o", outDir)
	require.NoError(t, err, output)

	var profiles []types.ProfileSummary
	require.NoError(t, json.Unmarshal([]byte(output), &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "jane", profiles[0].Name)
	assert.Equal(t, 2, profiles[0].TotalVersions)
	assert.Nil(t, profiles[0].Manifest)

	output, err = runCLI(t, dir, "versions", "-p", "jane", "-o", outDir)
	require.NoError(t, err, output)
	assert.Contains(t, output, profiles[0].LatestVersion)
}

func TestVersionsCommand_Check(t *testing.T) {
	dir := t.TempDir()
	cv, role := writeSources(t, dir)
	outDir := filepath.Join(dir, "profiles")

	output, err := runCLI(t, dir, "generate", "--no-ai", "-p", "jane", "-d", cv, "-r", role, "-o", outDir, "-f", "markdown,html")
	require.NoError(t, err, output)

	output, err = runCLI(t, dir, "versions", "-p", "jane", "--check", "-o", outDir)
	require.NoError(t, err, output)
	assert.Contains(t, output, "✓ 2 artifact(s)")

	manifests, err := filepath.Glob(filepath.Join(outDir, "jane", "v*", "metadata.json"))
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	require.NoError(t, os.WriteFile(manifests[0], []byte(`{"profile_name": "jane"}`), 0644))

	output, err = runCLI(t, dir, "versions", "-p", "jane", "--check", "-o", outDir)
	assert.Error(t, err)
	assert.Contains(t, output, "✗ manifest: validation failed")
	assert.Contains(t, output, "1 of 1 version(s) of jane failed the check")
}

func TestCleanupCommand(t *testing.T) {
	dir := t.TempDir()
	cv, role := writeSources(t, dir)
	outDir := filepath.Join(dir, "profiles")

	for i := 0; i < 3; i++ {
		output, err := runCLI(t, dir, "generate", "--no-ai", "-p", "jane", "-d", cv, "-r", role, "-o", outDir, "-f", "markdown")
		require.NoError(t, err, output)
	}

	output, err := runCLI(t, dir, "cleanup", "-p", "jane", "--keep", "1", "--dry-run", "-o", outDir)
	require.NoError(t, err, output)
	assert.Contains(t, output, "Would keep 1 and remove 2 version(s) of jane")

	versions, err := filepath.Glob(filepath.Join(outDir, "jane", "v*"))
	require.NoError(t, err)
	assert.Len(t, versions, 3)

	output, err = runCLI(t, dir, "cleanup", "-p", "jane", "--keep", "1", "-o", outDir)
	require.NoError(t, err, output)
	assert.Contains(t, output, "Kept 1 and removed 2 version(s) of jane")

	versions, err = filepath.Glob(filepath.Join(outDir, "jane", "v*"))
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestCleanupCommand_UnknownProfile(t *testing.T) {
	dir := t.TempDir()
	output, err := runCLI(t, dir, "cleanup", "-p", "nobody", "-o", filepath.Join(dir, "profiles"))

	assert.Error(t, err)
	assert.Contains(t, output, "profile not found")
}

func TestTemplateCommands(t *testing.T) {
	dir := t.TempDir()

	output, err := runCLI(t, dir, "template", "default", "--save-as", "base.md")
	require.NoError(t, err, output)
	assert.FileExists(t, filepath.Join(dir, "templates", "base.md"))

	output, err = runCLI(t, dir, "template", "list")
	require.NoError(t, err, output)
	assert.Contains(t, output, "base.md")

	output, err = runCLI(t, dir, "template", "validate", "base.md")
	require.NoError(t, err, output)
	assert.Contains(t, output, "is valid")

	output, err = runCLI(t, dir, "template", "backup", "base.md")
	require.NoError(t, err, output)
	assert.Contains(t, output, "base_backup_")
}

func TestTemplateValidate_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.md")
	require.NoError(t, os.WriteFile(path, []byte("Just some text\n"), 0644))

	output, err := runCLI(t, dir, "template", "validate", path)
	assert.Error(t, err)
	assert.Contains(t, output, "is not valid")
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "easycv.yaml")

	output, err := runCLI(t, dir, "config", "sample", path)
	require.NoError(t, err, output)
	assert.FileExists(t, path)

	output, err = runCLI(t, dir, "--config", path, "config", "validate")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Configuration is valid")

	output, err = runCLI(t, dir, "--config", path, "--api-key", "secret-key-1234", "config", "show")
	require.NoError(t, err, output)
	assert.Contains(t, output, "1234")
	assert.NotContains(t, output, "secret-key")
}

func TestConfigValidate_RejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"keep_versions": 0, "language": "latin"}`), 0644))

	output, err := runCLI(t, dir, "--config", path, "config", "validate")
	assert.Error(t, err)
	assert.Contains(t, output, "keep_versions")
	assert.Contains(t, output, "language")
}

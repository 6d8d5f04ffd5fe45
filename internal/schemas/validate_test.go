package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/easycv/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() types.Manifest {
	return types.Manifest{
		ProfileName:     "jane",
		Version:         "v202403051407",
		CreatedAt:       "2024-03-05T14:07:09Z",
		SourceDocuments: []string{"cv.pdf"},
		FilesGenerated: map[string]string{
			"markdown": "profiles/jane/v202403051407/jane.v202403051407.md",
			"word":     "profiles/jane/v202403051407/jane.v202403051407.rtf",
		},
		Strategies:   map[string]string{"markdown": "markdown", "word": "rtf"},
		GenerationID: "7f1c2a9e-3b4d-4e5f-8a6b-1c2d3e4f5a6b",
		Language:     types.LanguageEnglish,
	}
}

func encode(t *testing.T, m types.Manifest) []byte {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return data
}

func TestValidateManifest_Valid(t *testing.T) {
	assert.NoError(t, ValidateManifest(encode(t, validManifest())))
}

func TestValidateManifest_NilCollections(t *testing.T) {
	m := validManifest()
	m.SourceDocuments = nil
	m.StyleAnalysis = nil
	assert.NoError(t, ValidateManifest(encode(t, m)))
}

func TestValidateManifest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *types.Manifest)
		field  string
	}{
		{
			name:   "bad version",
			mutate: func(m *types.Manifest) { m.Version = "2024-03-05" },
			field:  "version",
		},
		{
			name:   "empty profile",
			mutate: func(m *types.Manifest) { m.ProfileName = "" },
			field:  "profile_name",
		},
		{
			name:   "profile with path separator",
			mutate: func(m *types.Manifest) { m.ProfileName = "../jane" },
			field:  "profile_name",
		},
		{
			name:   "missing markdown artifact",
			mutate: func(m *types.Manifest) { delete(m.FilesGenerated, "markdown") },
			field:  "files_generated",
		},
		{
			name:   "unknown format",
			mutate: func(m *types.Manifest) { m.FilesGenerated["latex"] = "x.tex" },
			field:  "files_generated",
		},
		{
			name:   "bad timestamp",
			mutate: func(m *types.Manifest) { m.CreatedAt = "yesterday" },
			field:  "created_at",
		},
		{
			name:   "unknown language",
			mutate: func(m *types.Manifest) { m.Language = "klingon" },
			field:  "language",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(&m)

			err := ValidateManifest(encode(t, m))
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.NotEmpty(t, validationErr.Errors)

			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateManifestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(path, encode(t, validManifest()), 0644))
	assert.NoError(t, ValidateManifestFile(path))

	err := ValidateManifestFile(filepath.Join(dir, "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	malformed := filepath.Join(dir, "malformed.json")
	require.NoError(t, os.WriteFile(malformed, []byte("{ invalid json }"), 0644))
	err = ValidateManifestFile(malformed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse manifest")
}

func TestValidateManifest_MissingRequiredAtRoot(t *testing.T) {
	err := ValidateManifest([]byte(`{}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateManifest_CompilesOnce(t *testing.T) {
	first, err := manifest()
	require.NoError(t, err)
	second, err := manifest()
	require.NoError(t, err)
	assert.Same(t, first, second)

	for i := 0; i < 3; i++ {
		assert.NoError(t, ValidateManifest(encode(t, validManifest())))
	}
}

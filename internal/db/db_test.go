package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/easycv/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest() *types.Manifest {
	return &types.Manifest{
		ProfileName:     "jane",
		Version:         "v202403051407",
		CreatedAt:       "2024-03-05T14:07:09Z",
		FilesGenerated:  map[string]string{"markdown": "jane.v202403051407.md"},
		GenerationID:    "7f1c2a9e-3b4d-4e5f-8a6b-1c2d3e4f5a6b",
		PreviousVersion: "v202403011200",
		Language:        types.LanguageChinese,
	}
}

func TestNewProfileVersion(t *testing.T) {
	row, err := newProfileVersion(testManifest())
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse("7f1c2a9e-3b4d-4e5f-8a6b-1c2d3e4f5a6b"), row.ID)
	assert.Equal(t, "jane", row.ProfileName)
	assert.Equal(t, "v202403051407", row.Version)
	assert.Equal(t, 2024, row.CreatedAt.Year())
	assert.Equal(t, "chinese", row.Language)
	assert.Equal(t, "v202403011200", row.PreviousVersion)

	decoded, err := row.DecodeManifest()
	require.NoError(t, err)
	assert.Equal(t, testManifest(), decoded)
}

func TestNewProfileVersion_ReplacesNonUUIDGenerationID(t *testing.T) {
	m := testManifest()
	m.GenerationID = "not-a-uuid"

	row, err := newProfileVersion(m)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, row.ID)
}

func TestNewProfileVersion_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *types.Manifest)
	}{
		{name: "missing profile", mutate: func(m *types.Manifest) { m.ProfileName = "" }},
		{name: "missing version", mutate: func(m *types.Manifest) { m.Version = "" }},
		{name: "bad timestamp", mutate: func(m *types.Manifest) { m.CreatedAt = "2024-03-05 14:07" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testManifest()
			tt.mutate(m)
			_, err := newProfileVersion(m)
			assert.Error(t, err)
		})
	}

	_, err := newProfileVersion(nil)
	assert.Error(t, err)
}

package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/easycv/internal/types"
)

// ProfileVersion represents a profile_versions row
type ProfileVersion struct {
	ID              uuid.UUID `json:"id"`
	ProfileName     string    `json:"profile_name"`
	Version         string    `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	Language        string    `json:"language,omitempty"`
	PreviousVersion string    `json:"previous_version,omitempty"`
	Manifest        []byte    `json:"-"`
	IndexedAt       time.Time `json:"indexed_at"`
}

// DecodeManifest unmarshals the stored manifest document
func (v *ProfileVersion) DecodeManifest() (*types.Manifest, error) {
	var m types.Manifest
	if err := json.Unmarshal(v.Manifest, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

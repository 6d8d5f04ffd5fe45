package types

// Manifest is the metadata.json written once per profile version.
// It is never mutated after it is written; corrections create a new version.
type Manifest struct {
	ProfileName     string            `json:"profile_name"`
	Version         string            `json:"version"`
	CreatedAt       string            `json:"created_at"` // RFC3339
	StyleAnalysis   map[string]string `json:"style_analysis"`
	SourceDocuments []string          `json:"source_documents"`
	FilesGenerated  map[string]string `json:"files_generated"`
	Strategies      map[string]string `json:"strategies,omitempty"` // format -> strategy that produced it
	Failures        map[string]string `json:"failures,omitempty"`   // format -> error for formats that produced nothing
	Warnings        []string          `json:"warnings,omitempty"`
	PreviousVersion string            `json:"previous_version,omitempty"`
	GenerationID    string            `json:"generation_id"`
	Language        Language          `json:"language,omitempty"`
}

// ProfileSummary describes one profile directory for listings.
type ProfileSummary struct {
	Name          string    `json:"name"`
	LatestVersion string    `json:"latest_version"`
	TotalVersions int       `json:"total_versions"`
	LastUpdated   string    `json:"last_updated"`
	OutputDir     string    `json:"output_dir"`
	Manifest      *Manifest `json:"metadata,omitempty"`
}

package types

import "time"

// SourceDocument is one parsed input file. It is never persisted; only its text flows forward.
type SourceDocument struct {
	Path        string    `json:"path"`
	Format      string    `json:"format"` // lower-case extension including the dot
	Text        string    `json:"text"`
	Hash        string    `json:"hash"` // SHA256 hex digest of Text
	ExtractedAt time.Time `json:"extracted_at"`
}

// ExtractedDocument is one entry of an ExtractionBatch.
// A failed extraction keeps its entry with empty Text and the failure in Error.
type ExtractedDocument struct {
	Path  string `json:"path"`
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Failed reports whether extraction of this entry failed
func (d ExtractedDocument) Failed() bool {
	return d.Error != ""
}

// ExtractionBatch holds one entry per input path, in input order, regardless of success.
type ExtractionBatch []ExtractedDocument

// Text returns the extracted text for path and whether the path is part of the batch.
func (b ExtractionBatch) Text(path string) (string, bool) {
	for _, d := range b {
		if d.Path == path {
			return d.Text, true
		}
	}
	return "", false
}

// Paths returns the source paths in batch order.
func (b ExtractionBatch) Paths() []string {
	paths := make([]string, 0, len(b))
	for _, d := range b {
		paths = append(paths, d.Path)
	}
	return paths
}

// Failures returns the entries whose extraction failed.
func (b ExtractionBatch) Failures() []ExtractedDocument {
	var failed []ExtractedDocument
	for _, d := range b {
		if d.Failed() {
			failed = append(failed, d)
		}
	}
	return failed
}

// NonEmpty returns the entries that yielded text.
func (b ExtractionBatch) NonEmpty() ExtractionBatch {
	var out ExtractionBatch
	for _, d := range b {
		if !isBlank(d.Text) {
			out = append(out, d)
		}
	}
	return out
}

package models

import "sort"

// IndexVersion is written into every embedding index.
const IndexVersion = "1.0"

// EmbeddingRecord is the embedding of one asset's caption.
type EmbeddingRecord struct {
	ID          int       `json:"id"`
	ImagePath   string    `json:"image_path"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Embedding   []float32 `json:"embedding"`
}

// EmbeddingIndex is the persisted set of caption embeddings, sorted by ID.
type EmbeddingIndex struct {
	Version     string            `json:"version"`
	Model       string            `json:"model"`
	GeneratedAt string            `json:"generated_at"`
	Embeddings  []EmbeddingRecord `json:"embeddings"`
}

// NewEmbeddingIndex returns an empty index for model.
func NewEmbeddingIndex(model string) *EmbeddingIndex {
	return &EmbeddingIndex{
		Version:    IndexVersion,
		Model:      model,
		Embeddings: make([]EmbeddingRecord, 0),
	}
}

// ByID returns the records keyed by ID. A nil index yields an empty map.
func (idx *EmbeddingIndex) ByID() map[int]EmbeddingRecord {
	out := make(map[int]EmbeddingRecord)
	if idx == nil {
		return out
	}
	for _, r := range idx.Embeddings {
		out[r.ID] = r
	}
	return out
}

// SortByID orders records by ascending ID.
func (idx *EmbeddingIndex) SortByID() {
	sort.SliceStable(idx.Embeddings, func(i, j int) bool { return idx.Embeddings[i].ID < idx.Embeddings[j].ID })
}

// Dimensions returns the length of the first record's vector, or 0 for an empty index.
func (idx *EmbeddingIndex) Dimensions() int {
	if idx == nil || len(idx.Embeddings) == 0 {
		return 0
	}
	return len(idx.Embeddings[0].Embedding)
}

// SyncFailure describes an asset excluded from a synchronization run.
type SyncFailure struct {
	ID     int    `json:"id"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// SyncReport summarizes one synchronization run.
type SyncReport struct {
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped"`
	Errors    int           `json:"errors"`
	Total     int           `json:"total"`
	Failures  []SyncFailure `json:"failures,omitempty"`
	Drifted   []int         `json:"drifted,omitempty"`
}

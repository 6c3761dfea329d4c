package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/shashin/internal/models"
	"github.com/hyperjump/shashin/pkg/utils"
)

// MemoryIndex is an in-memory vector index using brute-force inner product search.
// Vectors are L2-normalized on insert so scores are cosine similarities.
type MemoryIndex struct {
	dimensions int
	ids        []int
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		ids:        make([]int, 0),
		vectors:    make([][]float32, 0),
	}, nil
}

// FromIndex builds a MemoryIndex from every record of an embedding index.
func FromIndex(ctx context.Context, idx *models.EmbeddingIndex) (*MemoryIndex, error) {
	dims := idx.Dimensions()
	if dims == 0 {
		return nil, fmt.Errorf("embedding index is empty")
	}
	m, err := NewMemoryIndex(dims)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(idx.Embeddings))
	vecs := make([][]float32, len(idx.Embeddings))
	for i, rec := range idx.Embeddings {
		ids[i] = rec.ID
		vecs[i] = rec.Embedding
	}
	if err := m.Add(ctx, ids, vecs); err != nil {
		return nil, err
	}
	return m, nil
}

// Add inserts normalized copies of vectors with the given IDs.
func (m *MemoryIndex) Add(ctx context.Context, ids []int, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != m.dimensions {
			return fmt.Errorf("vector %d dimension mismatch: got %d, expected %d", id, len(vectors[i]), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, vectors[i])
		utils.NormalizeL2(vec)
		m.ids = append(m.ids, id)
		m.vectors = append(m.vectors, vec)
	}
	return nil
}

// Search returns the top-k vectors by cosine similarity to query. Ties keep ascending ID order.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	q := make([]float32, len(query))
	copy(q, query)
	utils.NormalizeL2(q)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.ids) == 0 {
		return nil, nil
	}
	scores := make([]*VectorResult, len(m.ids))
	for i, vec := range m.vectors {
		scores[i] = &VectorResult{ID: m.ids[i], Score: InnerProduct(q, vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].ID < scores[j].ID
	})
	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k], nil
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Dimensions returns the vector length.
func (m *MemoryIndex) Dimensions() int { return m.dimensions }

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

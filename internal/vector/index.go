// Package vector provides similarity search over caption embeddings.
package vector

import "context"

// VectorIndex defines vector storage and similarity search keyed by asset ID.
type VectorIndex interface {
	Add(ctx context.Context, ids []int, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Size() int
	Dimensions() int
	Close() error
}

// VectorResult is a single vector search hit.
type VectorResult struct {
	ID    int
	Score float64 // inner product; cosine similarity for normalized vectors
}

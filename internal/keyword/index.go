// Package keyword provides full-text search over gallery captions.
package keyword

import (
	"context"

	"github.com/hyperjump/shashin/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means exact term matching.
type SearchOptions struct {
	// FuzzyEnabled tolerates typos in caption terms.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance (1 or 2). Default 1.
	Fuzziness int
}

// KeywordIndex defines caption keyword search operations.
type KeywordIndex interface {
	Index(ctx context.Context, rec *models.EmbeddingRecord) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	Delete(ctx context.Context, id int) error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    int
	Score float64
}

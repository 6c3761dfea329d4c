// Package search runs hybrid keyword and semantic search over gallery captions.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hyperjump/shashin/internal/config"
	"github.com/hyperjump/shashin/internal/embedding"
	"github.com/hyperjump/shashin/internal/keyword"
	"github.com/hyperjump/shashin/internal/models"
	"github.com/hyperjump/shashin/internal/vector"
	"go.uber.org/multierr"
)

// ErrSemanticUnavailable is returned for semantic-only queries when the engine has no embedder.
var ErrSemanticUnavailable = errors.New("semantic search unavailable: no embedder configured")

// Engine runs hybrid (keyword + semantic) search over one embedding index.
type Engine struct {
	records      map[int]models.EmbeddingRecord
	embedder     embedding.Embedder
	vectorIndex  vector.VectorIndex
	keywordIndex keyword.KeywordIndex
	config       *config.SearchConfig
}

// NewEngine creates a search engine with the given dependencies.
// A nil embedder restricts the engine to keyword search.
// records hydrates hits into results; hits without a record are dropped.
func NewEngine(
	records *models.EmbeddingIndex,
	embedder embedding.Embedder,
	vectorIndex vector.VectorIndex,
	keywordIndex keyword.KeywordIndex,
	cfg *config.SearchConfig,
) *Engine {
	return &Engine{
		records:      records.ByID(),
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		config:       cfg,
	}
}

// BuildEngine indexes every record of idx in memory and returns an engine over them.
func BuildEngine(ctx context.Context, idx *models.EmbeddingIndex, embedder embedding.Embedder, cfg *config.SearchConfig) (*Engine, error) {
	kw, err := keyword.NewBleveIndex()
	if err != nil {
		return nil, err
	}
	if err := kw.Build(ctx, idx.Embeddings); err != nil {
		_ = kw.Close()
		return nil, fmt.Errorf("keyword index: %w", err)
	}
	vec, err := vector.FromIndex(ctx, idx)
	if err != nil {
		_ = kw.Close()
		return nil, fmt.Errorf("vector index: %w", err)
	}
	return NewEngine(idx, embedder, vec, kw, cfg), nil
}

// Size returns the number of searchable records.
func (e *Engine) Size() int { return len(e.records) }

// Close releases the indices and the embedder.
func (e *Engine) Close() error {
	err := multierr.Combine(e.keywordIndex.Close(), e.vectorIndex.Close())
	if e.embedder != nil {
		err = multierr.Append(err, e.embedder.Close())
	}
	return err
}

// Search runs hybrid search and returns asset-level results.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := ProcessQuery(query, e.config); err != nil {
		return nil, err
	}
	if e.embedder == nil && query.SemanticEnabled {
		if !query.KeywordEnabled {
			return nil, ErrSemanticUnavailable
		}
		query.SemanticEnabled = false
	}
	keywordWeight, semanticWeight := weights(query, e.config)

	var (
		keywordResults  []*keyword.KeywordResult
		semanticResults []*vector.VectorResult
		errChan         = make(chan error, 2)
		wg              sync.WaitGroup
	)

	if query.KeywordEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var opts *keyword.SearchOptions
			if query.Fuzzy {
				opts = &keyword.SearchOptions{FuzzyEnabled: true}
			}
			results, err := e.keywordIndex.Search(ctx, query.Query, e.config.TopKCandidates, opts)
			if err != nil {
				errChan <- fmt.Errorf("keyword search failed: %w", err)
				return
			}
			keywordResults = results
		}()
	}

	if query.SemanticEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queryEmbedding, err := e.embedder.Embed(ctx, query.Query)
			if err != nil {
				errChan <- fmt.Errorf("embedding failed: %w", err)
				return
			}
			results, err := e.vectorIndex.Search(ctx, queryEmbedding, e.config.TopKCandidates)
			if err != nil {
				errChan <- fmt.Errorf("vector search failed: %w", err)
				return
			}
			semanticResults = results
		}()
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	fused := Fuse(
		NormalizeKeywordScores(keywordResults),
		NormalizeSemanticScores(semanticResults),
		keywordWeight, semanticWeight,
	)
	if query.MinScore > 0 {
		filtered := fused[:0]
		for _, r := range fused {
			if r.Score >= query.MinScore {
				filtered = append(filtered, r)
			}
		}
		fused = filtered
	}

	response := &models.SearchResponse{
		Results: make([]*models.SearchResult, 0, query.Limit),
		Total:   len(fused),
		Query:   query.Query,
	}
	for _, r := range fused {
		if len(response.Results) == query.Limit {
			break
		}
		rec, ok := e.records[r.ID]
		if !ok {
			continue
		}
		response.Results = append(response.Results, &models.SearchResult{
			ID:            rec.ID,
			ImagePath:     rec.ImagePath,
			Date:          rec.Date,
			Caption:       rec.Description,
			Score:         r.Score,
			KeywordScore:  r.KeywordScore,
			SemanticScore: r.SemanticScore,
			Rank:          len(response.Results) + 1,
		})
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}

// Record returns the indexed record for an asset ID.
func (e *Engine) Record(id int) (models.EmbeddingRecord, bool) {
	rec, ok := e.records[id]
	return rec, ok
}

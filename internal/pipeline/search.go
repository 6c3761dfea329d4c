package pipeline

import (
	"context"
	"errors"

	"github.com/hyperjump/shashin/internal/embedding"
	"github.com/hyperjump/shashin/internal/search"
	"go.uber.org/zap"
)

// ErrNoIndex is returned when searching before any embedding run.
var ErrNoIndex = errors.New("no embedding index, run embed first")

// OpenEngine loads the stored index into an in-memory search engine.
// Query embeddings go through an LRU cache. Without a token the engine is keyword-only.
func (p *Pipeline) OpenEngine(ctx context.Context, token string) (*search.Engine, error) {
	idx, err := p.store.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, ErrNoIndex
	}

	var embedder embedding.Embedder
	inner, release, err := p.remoteEmbedder(token)
	switch {
	case err == nil:
		embedder = &releasingEmbedder{
			CachedEmbedder: embedding.NewCachedEmbedder(inner, p.cfg.Embedding.CacheSize),
			release:        release,
		}
	case errors.Is(err, ErrMissingToken):
		p.logger.Warn("no embedding token, semantic search disabled")
	default:
		return nil, err
	}

	engine, err := search.BuildEngine(ctx, idx, embedder, &p.cfg.Search)
	if err != nil {
		if embedder != nil {
			_ = embedder.Close()
		}
		return nil, err
	}
	p.logger.Debug("search engine ready", zap.Int("records", engine.Size()), zap.String("model", idx.Model))
	return engine, nil
}

// releasingEmbedder closes a client created by the pipeline, never an injected one.
type releasingEmbedder struct {
	*embedding.CachedEmbedder
	release func()
}

func (r *releasingEmbedder) Close() error {
	r.release()
	return nil
}

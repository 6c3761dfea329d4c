package pipeline

import (
	"context"

	"github.com/hyperjump/shashin/internal/captions"
	"github.com/hyperjump/shashin/internal/indexer"
	"github.com/hyperjump/shashin/internal/models"
	"github.com/hyperjump/shashin/pkg/utils"
	"go.uber.org/zap"
)

// EmbedOptions controls one embedding run.
type EmbedOptions struct {
	// Token overrides the configured token.
	Token string
	// Incremental reuses records already present in the stored index.
	Incremental bool
	// Strict makes drifted stored records fatal.
	Strict bool
}

// EmbedResult summarizes an embedding run.
type EmbedResult struct {
	RunID             string             `json:"run_id"`
	Report            *models.SyncReport `json:"report"`
	MissingThumbnails []int              `json:"missing_thumbnails,omitempty"`
	Orphaned          []int              `json:"orphaned,omitempty"`
	IndexPath         string             `json:"index_path"`
}

// Embed synchronizes the embedding index with the manifest of the last build.
// Per-asset failures are counted in the report; the index is saved regardless.
func (p *Pipeline) Embed(ctx context.Context, opts EmbedOptions) (*EmbedResult, error) {
	log, runID := utils.WithRunID(p.logger)

	embedder, release, err := p.remoteEmbedder(opts.Token)
	if err != nil {
		return nil, err
	}
	defer release()

	manifest, err := p.store.LoadManifest(ctx)
	if err != nil {
		return nil, err
	}
	mapping, err := captions.Load(p.cfg.Gallery.MappingFile)
	if err != nil {
		return nil, err
	}
	var existing *models.EmbeddingIndex
	if opts.Incremental {
		existing, err = p.store.LoadIndex(ctx)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.Model != "" && existing.Model != p.cfg.Embedding.Model {
			log.Warn("stored index was built with another model",
				zap.String("stored", existing.Model), zap.String("configured", p.cfg.Embedding.Model))
		}
	}

	al, err := indexer.ValidateAlignment(manifest, existing, indexer.AlignOptions{
		SiteDir: p.cfg.Gallery.SiteDir,
		Strict:  opts.Strict,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	syncOpts := []indexer.SynchronizerOption{
		indexer.WithLogger(log),
		indexer.WithPause(p.cfg.Embedding.PauseEvery, p.cfg.Embedding.Pause),
	}
	if p.sleep != nil {
		syncOpts = append(syncOpts, indexer.WithSleeper(p.sleep))
	}
	syncer := indexer.NewSynchronizer(embedder, p.cfg.Embedding.Model, syncOpts...)
	idx, report, err := syncer.Synchronize(ctx, mapping, existing, al.Assets, opts.Incremental)
	if err != nil {
		return nil, err
	}
	report.Drifted = al.Drifted

	if err := p.store.SaveIndex(ctx, idx); err != nil {
		return nil, err
	}

	log.Info("embedding index saved", zap.String("path", p.cfg.IndexPath()), zap.Int("drifted", len(al.Drifted)))
	return &EmbedResult{
		RunID:             runID,
		Report:            report,
		MissingThumbnails: al.MissingThumbnails,
		Orphaned:          al.Orphaned,
		IndexPath:         p.cfg.IndexPath(),
	}, nil
}

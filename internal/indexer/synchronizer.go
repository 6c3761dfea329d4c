// Package indexer keeps the caption embedding index aligned with the ranked assets.
package indexer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hyperjump/shashin/internal/embedding"
	"github.com/hyperjump/shashin/internal/models"
	"go.uber.org/zap"
)

// Captions resolves a natural key to its caption text.
type Captions interface {
	Caption(key string) (string, bool)
}

// Default pacing of remote embedding calls.
const (
	DefaultPauseEvery = 10
	DefaultPause      = time.Second
)

// Synchronizer builds an embedding index with one record per ranked asset.
type Synchronizer struct {
	embedder   embedding.Embedder
	model      string
	pauseEvery int
	pause      time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger // optional
}

// SynchronizerOption configures a Synchronizer.
type SynchronizerOption func(*Synchronizer)

// WithLogger sets a logger for per-asset progress and warnings.
func WithLogger(l *zap.Logger) SynchronizerOption {
	return func(s *Synchronizer) { s.logger = l }
}

// WithPause pauses for d after every n successful embeddings. n < 1 disables pausing.
func WithPause(n int, d time.Duration) SynchronizerOption {
	return func(s *Synchronizer) {
		s.pauseEvery = n
		s.pause = d
	}
}

// WithSleeper replaces the pause implementation.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) SynchronizerOption {
	return func(s *Synchronizer) { s.sleep = sleep }
}

// NewSynchronizer creates a synchronizer that records model as the index model.
func NewSynchronizer(embedder embedding.Embedder, model string, opts ...SynchronizerOption) *Synchronizer {
	s := &Synchronizer{
		embedder:   embedder,
		model:      model,
		pauseEvery: DefaultPauseEvery,
		pause:      DefaultPause,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synchronize returns a fresh index with one record per asset, in ascending ID order.
// In incremental mode, records already present in existing are copied verbatim.
// Assets without a caption or whose embedding fails are recorded in the report and skipped.
// Only cancellation of ctx aborts the run.
func (s *Synchronizer) Synchronize(
	ctx context.Context,
	captions Captions,
	existing *models.EmbeddingIndex,
	assets []models.RankedAsset,
	incremental bool,
) (*models.EmbeddingIndex, *models.SyncReport, error) {
	out := models.NewEmbeddingIndex(s.model)
	report := &models.SyncReport{}

	var reuse map[int]models.EmbeddingRecord
	if incremental {
		reuse = existing.ByID()
	}

	ordered := sortedByID(assets)
	for i, asset := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if rec, ok := reuse[asset.ID]; ok {
			out.Embeddings = append(out.Embeddings, rec)
			report.Skipped++
			continue
		}

		caption, ok := captions.Caption(asset.Key)
		if !ok {
			s.fail(report, asset, "no caption for "+asset.Key)
			continue
		}

		if s.logger != nil {
			s.logger.Debug("embedding asset", zap.Int("id", asset.ID), zap.String("date", asset.Key))
		}
		vec, err := s.embedder.Embed(ctx, caption)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			s.fail(report, asset, err.Error())
			continue
		}
		out.Embeddings = append(out.Embeddings, models.EmbeddingRecord{
			ID:          asset.ID,
			ImagePath:   asset.ImagePath,
			Date:        asset.Key,
			Description: caption,
			Embedding:   vec,
		})
		report.Processed++

		if s.logger != nil && report.Processed%10 == 0 {
			s.logger.Info("embedding progress", zap.Int("processed", report.Processed), zap.Int("assets", len(ordered)))
		}
		if s.pauseEvery > 0 && report.Processed%s.pauseEvery == 0 && i < len(ordered)-1 {
			if err := s.sleep(ctx, s.pause); err != nil {
				return nil, nil, err
			}
		}
	}

	out.SortByID()
	report.Total = len(out.Embeddings)
	report.Errors = len(report.Failures)
	if s.logger != nil {
		s.logger.Info("embedding sync complete",
			zap.Int("processed", report.Processed),
			zap.Int("skipped", report.Skipped),
			zap.Int("errors", report.Errors),
			zap.Int("total", report.Total))
	}
	return out, report, nil
}

func (s *Synchronizer) fail(report *models.SyncReport, asset models.RankedAsset, reason string) {
	report.Failures = append(report.Failures, models.SyncFailure{ID: asset.ID, Key: asset.Key, Reason: reason})
	if s.logger != nil {
		s.logger.Warn("asset not embedded",
			zap.Int("id", asset.ID),
			zap.String("date", asset.Key),
			zap.String("reason", reason))
	}
}

func sortedByID(assets []models.RankedAsset) []models.RankedAsset {
	out := make([]models.RankedAsset, len(assets))
	copy(out, assets)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("pause interrupted: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/hyperjump/shashin/internal/captions"
	"github.com/hyperjump/shashin/internal/gallery"
	"github.com/hyperjump/shashin/internal/models"
	"github.com/hyperjump/shashin/internal/photos"
	"github.com/hyperjump/shashin/internal/ranking"
	"github.com/hyperjump/shashin/internal/thumbnail"
	"github.com/hyperjump/shashin/pkg/utils"
	"go.uber.org/zap"
)

// BuildResult summarizes a gallery build.
type BuildResult struct {
	RunID      string   `json:"run_id"`
	Assets     int      `json:"assets"`
	Undated    []string `json:"undated,omitempty"`
	Thumbnails int      `json:"thumbnails"`
	Markers    int      `json:"markers"`
	Document   string   `json:"document"`
}

// Build scans the source directory, ranks the photos, writes one thumbnail per asset,
// splices the gallery fragment into the document and records the manifest.
// Captions are checked before anything is written.
func (p *Pipeline) Build(ctx context.Context) (*BuildResult, error) {
	log, runID := utils.WithRunID(p.logger)
	g := p.cfg.Gallery

	policy, err := ranking.ParseUndatedPolicy(g.UndatedPolicy)
	if err != nil {
		return nil, err
	}
	enc, err := thumbnail.NewEncoder(p.cfg.Thumbnail.Format, p.cfg.Thumbnail.Quality)
	if err != nil {
		return nil, err
	}
	mapping, err := captions.Load(g.MappingFile)
	if err != nil {
		return nil, err
	}

	extractor := p.extractor
	if extractor == nil {
		extractor = photos.NewExifDateExtractor(g.DateTag)
	}
	scanner := photos.NewScanner(g.Extensions, photos.WithLogger(log), photos.WithExtractor(extractor))
	found, err := scanner.Scan(ctx, g.SourceDir)
	if err != nil {
		return nil, err
	}

	ranked, err := ranking.NewRanker(&ranking.RankingConfig{Policy: policy, ImageExt: enc.Ext()}).Rank(found)
	if err != nil {
		return nil, err
	}
	res := &BuildResult{RunID: runID, Assets: len(ranked.Assets), Document: g.OutputPath()}
	for _, u := range ranked.Undated {
		res.Undated = append(res.Undated, u.Name)
		log.Warn("photo left out of the gallery: no date", zap.String("photo", u.Name))
	}

	if err := gallery.CheckCaptions(ranked.Assets, mapping); err != nil {
		return nil, err
	}
	fragment, err := gallery.BuildFragment(ranked.Assets, mapping)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(g.SiteDir, 0755); err != nil {
		return nil, fmt.Errorf("create site directory: %w", err)
	}
	tr := thumbnail.NewTransformer(g.SiteDir, p.cfg.Thumbnail.Size, enc, thumbnail.WithLogger(log))
	res.Thumbnails, err = tr.TransformAll(ctx, ranked.Assets)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Markers, err = gallery.SpliceMarker(g.TemplatePath(), g.OutputPath(), g.Marker, fragment)
	if err != nil {
		return nil, err
	}
	if res.Markers == 0 {
		log.Warn("template has no marker line", zap.String("template", g.TemplatePath()), zap.String("marker", g.Marker))
	}

	manifest := models.NewAssetManifest(ranked.Assets, p.cfg.Thumbnail.Format, p.now())
	if err := p.store.SaveManifest(ctx, manifest); err != nil {
		return nil, err
	}

	log.Info("gallery built",
		zap.Int("assets", res.Assets),
		zap.Int("undated", len(res.Undated)),
		zap.Int("markers", res.Markers),
		zap.String("document", res.Document),
	)
	return res, nil
}

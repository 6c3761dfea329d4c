package indexer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/shashin/internal/models"
	"go.uber.org/zap"
)

// ErrAlignment is returned when the manifest cannot be trusted as the ID space.
var ErrAlignment = errors.New("asset alignment")

// Alignment is the outcome of checking a manifest against the site and a previous index.
type Alignment struct {
	Assets []models.RankedAsset
	// MissingThumbnails lists IDs whose image is absent from the site directory.
	MissingThumbnails []int
	// Drifted lists IDs whose stored record was embedded for a different date.
	Drifted []int
	// Orphaned lists stored record IDs that no longer exist in the manifest.
	Orphaned []int
}

// AlignOptions controls ValidateAlignment.
type AlignOptions struct {
	SiteDir string
	Strict  bool
	Logger  *zap.Logger // optional
}

// ValidateAlignment checks that manifest IDs are dense from 1 with a natural key each,
// reports missing thumbnails, and compares existing records with the manifest keys.
// Drift is a warning unless opts.Strict is set.
func ValidateAlignment(manifest *models.AssetManifest, existing *models.EmbeddingIndex, opts AlignOptions) (*Alignment, error) {
	if manifest == nil {
		return nil, fmt.Errorf("%w: no asset manifest, run build first", ErrAlignment)
	}
	assets, err := manifest.RankedAssets()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAlignment, err)
	}
	for i, a := range assets {
		if a.ID != i+1 {
			return nil, fmt.Errorf("%w: asset IDs are not dense, expected %d got %d", ErrAlignment, i+1, a.ID)
		}
	}

	al := &Alignment{Assets: assets}
	byID := make(map[int]models.RankedAsset, len(assets))
	for _, a := range assets {
		byID[a.ID] = a
		if opts.SiteDir != "" {
			name := strings.TrimPrefix(a.ImagePath, "./")
			if _, err := os.Stat(filepath.Join(opts.SiteDir, name)); err != nil {
				al.MissingThumbnails = append(al.MissingThumbnails, a.ID)
			}
		}
	}

	if existing != nil {
		for _, rec := range existing.Embeddings {
			a, ok := byID[rec.ID]
			if !ok {
				al.Orphaned = append(al.Orphaned, rec.ID)
				continue
			}
			if rec.Date != a.Key {
				al.Drifted = append(al.Drifted, rec.ID)
			}
		}
		sort.Ints(al.Orphaned)
		sort.Ints(al.Drifted)
	}

	if l := opts.Logger; l != nil {
		if len(al.MissingThumbnails) > 0 {
			l.Warn("thumbnails missing", zap.Ints("ids", al.MissingThumbnails))
		}
		if len(al.Drifted) > 0 {
			l.Warn("stored embeddings drifted from manifest dates", zap.Ints("ids", al.Drifted))
		}
		if len(al.Orphaned) > 0 {
			l.Info("dropping embeddings for removed assets", zap.Ints("ids", al.Orphaned))
		}
	}
	if opts.Strict && len(al.Drifted) > 0 {
		return al, fmt.Errorf("%w: %d stored embeddings drifted: %v", ErrAlignment, len(al.Drifted), al.Drifted)
	}
	return al, nil
}

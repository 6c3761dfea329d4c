// Package storage persists the asset manifest and the embedding index as JSON files.
package storage

import (
	"context"

	"github.com/hyperjump/shashin/internal/models"
)

// Storage defines manifest and embedding index persistence.
// Load methods return (nil, nil) when nothing has been saved yet.
type Storage interface {
	LoadIndex(ctx context.Context) (*models.EmbeddingIndex, error)
	SaveIndex(ctx context.Context, idx *models.EmbeddingIndex) error
	LoadManifest(ctx context.Context) (*models.AssetManifest, error)
	SaveManifest(ctx context.Context, m *models.AssetManifest) error
	// Paths returns the files backing this storage.
	Paths() []string
}

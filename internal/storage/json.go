package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/shashin/internal/models"
)

// FileStorage implements Storage with two JSON files.
type FileStorage struct {
	indexPath    string
	manifestPath string
	now          func() time.Time
}

// FileStorageOption configures a FileStorage.
type FileStorageOption func(*FileStorage)

// WithClock sets the clock used for generated_at timestamps.
func WithClock(now func() time.Time) FileStorageOption {
	return func(s *FileStorage) { s.now = now }
}

// NewFileStorage creates a storage backed by indexPath and manifestPath.
func NewFileStorage(indexPath, manifestPath string, opts ...FileStorageOption) *FileStorage {
	s := &FileStorage{
		indexPath:    indexPath,
		manifestPath: manifestPath,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadIndex reads the embedding index. A missing file yields (nil, nil).
func (s *FileStorage) LoadIndex(ctx context.Context) (*models.EmbeddingIndex, error) {
	var idx models.EmbeddingIndex
	found, err := ReadJSON(s.indexPath, &idx)
	if err != nil {
		return nil, fmt.Errorf("load embedding index: %w", err)
	}
	if !found {
		return nil, nil
	}
	if idx.Embeddings == nil {
		idx.Embeddings = make([]models.EmbeddingRecord, 0)
	}
	return &idx, nil
}

// SaveIndex sorts the records by ID, stamps generated_at and rewrites the whole file.
func (s *FileStorage) SaveIndex(ctx context.Context, idx *models.EmbeddingIndex) error {
	if idx == nil {
		return fmt.Errorf("save embedding index: nil index")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if idx.Version == "" {
		idx.Version = models.IndexVersion
	}
	if idx.Embeddings == nil {
		idx.Embeddings = make([]models.EmbeddingRecord, 0)
	}
	idx.SortByID()
	idx.GeneratedAt = s.now().UTC().Format(time.RFC3339Nano)
	if err := WriteJSON(s.indexPath, idx); err != nil {
		return fmt.Errorf("save embedding index: %w", err)
	}
	return nil
}

// LoadManifest reads the asset manifest. A missing file yields (nil, nil).
func (s *FileStorage) LoadManifest(ctx context.Context) (*models.AssetManifest, error) {
	var m models.AssetManifest
	found, err := ReadJSON(s.manifestPath, &m)
	if err != nil {
		return nil, fmt.Errorf("load asset manifest: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &m, nil
}

// SaveManifest rewrites the asset manifest.
func (s *FileStorage) SaveManifest(ctx context.Context, m *models.AssetManifest) error {
	if m == nil {
		return fmt.Errorf("save asset manifest: nil manifest")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WriteJSON(s.manifestPath, m); err != nil {
		return fmt.Errorf("save asset manifest: %w", err)
	}
	return nil
}

// Paths returns the index and manifest paths.
func (s *FileStorage) Paths() []string {
	return []string{s.indexPath, s.manifestPath}
}

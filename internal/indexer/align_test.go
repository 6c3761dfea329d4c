package indexer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/shashin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestOf(assets ...models.RankedAsset) *models.AssetManifest {
	return models.NewAssetManifest(assets, "webp", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestValidateAlignment_NoManifest(t *testing.T) {
	_, err := ValidateAlignment(nil, nil, AlignOptions{})
	assert.True(t, errors.Is(err, ErrAlignment))
}

func TestValidateAlignment_Gap(t *testing.T) {
	_, err := ValidateAlignment(manifestOf(assetOn(1, 3), assetOn(3, 5)), nil, AlignOptions{})
	assert.True(t, errors.Is(err, ErrAlignment))
}

func TestValidateAlignment_BadKey(t *testing.T) {
	m := manifestOf(assetOn(1, 3))
	m.Assets[0].Date = ""
	_, err := ValidateAlignment(m, nil, AlignOptions{})
	assert.True(t, errors.Is(err, ErrAlignment))
}

func TestValidateAlignment_MissingThumbnails(t *testing.T) {
	site := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(site, "1.webp"), []byte("x"), 0644))

	al, err := ValidateAlignment(manifestOf(assetOn(1, 3), assetOn(2, 5)), nil, AlignOptions{SiteDir: site})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, al.MissingThumbnails)
	assert.Len(t, al.Assets, 2)
}

func TestValidateAlignment_DriftAndOrphans(t *testing.T) {
	existing := models.NewEmbeddingIndex("m")
	existing.Embeddings = []models.EmbeddingRecord{
		{ID: 1, Date: "03/03/2024"},
		{ID: 2, Date: "04/03/2024"},
		{ID: 7, Date: "09/03/2024"},
	}
	m := manifestOf(assetOn(1, 3), assetOn(2, 5))

	al, err := ValidateAlignment(m, existing, AlignOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, al.Drifted)
	assert.Equal(t, []int{7}, al.Orphaned)

	al, err = ValidateAlignment(m, existing, AlignOptions{Strict: true})
	assert.True(t, errors.Is(err, ErrAlignment))
	require.NotNil(t, al)
	assert.Equal(t, []int{2}, al.Drifted)
}

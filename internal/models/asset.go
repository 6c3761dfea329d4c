package models

import (
	"fmt"
	"sort"
	"time"
)

// DateKeyLayout formats a date as the natural key used in caption mappings (day/month/year).
const DateKeyLayout = "02/01/2006"

// ManifestVersion is written into every asset manifest.
const ManifestVersion = "1.0"

// RankedAsset is a source photo with its dense, chronological ID.
type RankedAsset struct {
	ID        int
	Source    SourcePhoto
	Date      time.Time
	Key       string
	ImagePath string
}

// NaturalKey returns the caption key for a date.
func NaturalKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseNaturalKey parses a key produced by NaturalKey.
func ParseNaturalKey(key string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// ImageName returns the output file name for an asset ID, e.g. "42.webp".
func ImageName(id int, ext string) string {
	return fmt.Sprintf("%d.%s", id, ext)
}

// ImagePath returns the document-relative path for an asset ID, e.g. "./42.webp".
func ImagePath(id int, ext string) string {
	return "./" + ImageName(id, ext)
}

// ManifestAsset is the persisted form of a RankedAsset.
type ManifestAsset struct {
	ID        int    `json:"id"`
	ImagePath string `json:"image_path"`
	Date      string `json:"date"`
	Source    string `json:"source"`
}

// AssetManifest records the ID assignment of the last successful build.
type AssetManifest struct {
	Version     string          `json:"version"`
	GeneratedAt string          `json:"generated_at"`
	ImageFormat string          `json:"image_format"`
	Assets      []ManifestAsset `json:"assets"`
}

// NewAssetManifest builds a manifest from ranked assets.
func NewAssetManifest(assets []RankedAsset, format string, now time.Time) *AssetManifest {
	m := &AssetManifest{
		Version:     ManifestVersion,
		GeneratedAt: now.UTC().Format(time.RFC3339Nano),
		ImageFormat: format,
		Assets:      make([]ManifestAsset, 0, len(assets)),
	}
	for _, a := range assets {
		m.Assets = append(m.Assets, ManifestAsset{
			ID:        a.ID,
			ImagePath: a.ImagePath,
			Date:      a.Key,
			Source:    a.Source.Name,
		})
	}
	sort.SliceStable(m.Assets, func(i, j int) bool { return m.Assets[i].ID < m.Assets[j].ID })
	return m
}

// RankedAssets converts the manifest back into ranked assets ordered by ID.
func (m *AssetManifest) RankedAssets() ([]RankedAsset, error) {
	out := make([]RankedAsset, 0, len(m.Assets))
	for _, a := range m.Assets {
		date, err := ParseNaturalKey(a.Date)
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", a.ID, err)
		}
		d := date
		out = append(out, RankedAsset{
			ID:        a.ID,
			Source:    SourcePhoto{Name: a.Source, Date: &d},
			Date:      date,
			Key:       a.Date,
			ImagePath: a.ImagePath,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

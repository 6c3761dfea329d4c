package trackmap

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/shashin/internal/captions"
	"github.com/hyperjump/shashin/internal/config"
	"github.com/hyperjump/shashin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <name>ridge</name>
    <trkseg>
      <trkpt lat="46.5" lon="7.9"></trkpt>
      <trkpt lat="46.6" lon="8.0"></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="46.7" lon="8.1"></trkpt>
    </trkseg>
  </trk>
</gpx>
`

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func setup(t *testing.T) (*config.MapConfig, *captions.Mapping) {
	t.Helper()
	dir := t.TempDir()
	gpxDir := filepath.Join(dir, "gpx")
	imgDir := filepath.Join(dir, "img")
	require.NoError(t, os.MkdirAll(gpxDir, 0755))
	require.NoError(t, os.MkdirAll(imgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(gpxDir, "b.gpx"), []byte(sampleGPX), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(gpxDir, "a.gpx"), []byte(sampleGPX), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(gpxDir, "notes.txt"), []byte("skip"), 0644))
	writeJPEG(t, filepath.Join(imgDir, "ridge.jpg"), 600, 400)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	m := cfg.Map
	m.GPXDir = gpxDir
	m.ImageDir = imgDir
	m.OutputFile = filepath.Join(dir, "out", "map.html")

	mapping := captions.NewMapping(
		models.CaptionEntry{Key: "a.gpx", Caption: "Ridge walk", Extra: []string{"2023-07-01", "ridge.jpg", "day trip"}},
		models.CaptionEntry{Key: "b.gpx", Caption: "River run", Extra: []string{"2023-08-12", "ridge.jpg", "packraft"}},
	)
	return &m, mapping
}

func TestLoadPointsAllSegments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.gpx")
	require.NoError(t, os.WriteFile(path, []byte(sampleGPX), 0644))

	points, err := LoadPoints(path)
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{46.5, 7.9}, {46.6, 8.0}, {46.7, 8.1}}, points)
}

func TestLoadPointsNoTrack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.gpx")
	doc := `<?xml version="1.0"?><gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"></gpx>`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := LoadPoints(path)
	assert.Error(t, err)
}

func TestPopupImageFitsSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.jpg")
	writeJPEG(t, path, 600, 400)

	encoded, err := PopupImage(path, 300)
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestPopupImageDoesNotEnlarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.jpg")
	writeJPEG(t, path, 100, 50)

	encoded, err := PopupImage(path, 300)
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestCollect(t *testing.T) {
	cfg, mapping := setup(t)
	r := NewRenderer(cfg)

	tracks, err := r.Collect(context.Background(), mapping)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "a.gpx", tracks[0].File)
	assert.Equal(t, "Ridge walk (2023-07-01)", tracks[0].Tooltip)
	assert.Equal(t, "day trip", tracks[0].Category)
	assert.Equal(t, cfg.Colors["day trip"], tracks[0].Color)
	assert.True(t, strings.HasPrefix(tracks[0].Popup, "Ridge walk (2023-07-01)<p><img src=\"data:image/jpeg;base64,"))
	assert.Len(t, tracks[0].Points, 3)
	assert.Equal(t, cfg.Colors["packraft"], tracks[1].Color)
}

func TestCollectUnknownCategory(t *testing.T) {
	cfg, _ := setup(t)
	mapping := captions.NewMapping(
		models.CaptionEntry{Key: "a.gpx", Caption: "Ridge", Extra: []string{"2023-07-01", "ridge.jpg", "ski"}},
		models.CaptionEntry{Key: "b.gpx", Caption: "River", Extra: []string{"2023-08-12", "ridge.jpg", "packraft"}},
	)

	_, err := NewRenderer(cfg).Collect(context.Background(), mapping)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestCollectMissingMapping(t *testing.T) {
	cfg, _ := setup(t)
	mapping := captions.NewMapping(
		models.CaptionEntry{Key: "a.gpx", Caption: "Ridge", Extra: []string{"2023-07-01", "ridge.jpg", "day trip"}},
	)

	_, err := NewRenderer(cfg).Collect(context.Background(), mapping)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.gpx")
}

func TestGenerateWritesMap(t *testing.T) {
	cfg, mapping := setup(t)

	n, err := NewRenderer(cfg).Generate(context.Background(), mapping)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, "leaflet.js")
	assert.Contains(t, page, "weight: 8")
	assert.Contains(t, page, "weight: 6")
	assert.Contains(t, page, "basemaps.cartocdn.com")
	assert.Contains(t, page, "46.5")
}

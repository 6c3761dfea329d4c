package trackmap

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/shashin/internal/config"
	"github.com/hyperjump/shashin/internal/models"
	"github.com/hyperjump/shashin/internal/storage"
	"go.uber.org/zap"
)

//go:embed map.html.tmpl
var mapTemplate string

var pageTemplate = template.Must(template.New("map").Parse(mapTemplate))

// Mapping resolves a GPX file name to [name, date, image, ..., category].
type Mapping interface {
	Lookup(key string) (models.CaptionEntry, bool)
}

// Renderer builds the trek map.
type Renderer struct {
	cfg    *config.MapConfig
	logger *zap.Logger // optional
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLogger sets a logger for per-track output.
func WithLogger(l *zap.Logger) RendererOption {
	return func(r *Renderer) { r.logger = l }
}

// NewRenderer creates a renderer for cfg.
func NewRenderer(cfg *config.MapConfig, opts ...RendererOption) *Renderer {
	r := &Renderer{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collect loads every .gpx file in the tracks directory, in name order.
// A track missing from the mapping, or with an unknown category, is an error.
func (r *Renderer) Collect(ctx context.Context, mapping Mapping) ([]Track, error) {
	entries, err := os.ReadDir(r.cfg.GPXDir)
	if err != nil {
		return nil, fmt.Errorf("read tracks: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".gpx") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	tracks := make([]Track, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := r.loadTrack(name, mapping)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
		if r.logger != nil {
			r.logger.Debug("track loaded", zap.String("file", name), zap.Int("points", len(t.Points)))
		}
	}
	return tracks, nil
}

func (r *Renderer) loadTrack(file string, mapping Mapping) (Track, error) {
	entry, ok := mapping.Lookup(file)
	if !ok {
		return Track{}, fmt.Errorf("track %s: not in mapping", file)
	}
	if len(entry.Extra) < 2 {
		return Track{}, fmt.Errorf("track %s: mapping needs [name, date, image, ..., category]", file)
	}
	t := Track{
		File:     file,
		Name:     entry.Caption,
		Date:     entry.Extra[0],
		Category: entry.Extra[len(entry.Extra)-1],
	}
	color, ok := r.cfg.Colors[t.Category]
	if !ok {
		return Track{}, fmt.Errorf("track %s: unknown category %q", file, t.Category)
	}
	t.Color = color
	t.Tooltip = TooltipText(t.Name, t.Date)

	points, err := LoadPoints(filepath.Join(r.cfg.GPXDir, file))
	if err != nil {
		return Track{}, fmt.Errorf("track %s: %w", file, err)
	}
	t.Points = points

	encoded, err := PopupImage(filepath.Join(r.cfg.ImageDir, entry.Extra[1]), r.cfg.PopupSize)
	if err != nil {
		return Track{}, fmt.Errorf("track %s popup: %w", file, err)
	}
	t.Popup = popupHTML(t.Tooltip, encoded)
	return t, nil
}

type page struct {
	Title       string
	Center      []float64
	Zoom        int
	TileURL     string
	Attribution string
	PopupWidth  int
	Tracks      []Track
}

// Render writes the HTML map for tracks to w.
func (r *Renderer) Render(w io.Writer, tracks []Track) error {
	if tracks == nil {
		tracks = []Track{}
	}
	return pageTemplate.Execute(w, page{
		Title:       "Treks",
		Center:      r.cfg.Center,
		Zoom:        r.cfg.Zoom,
		TileURL:     r.cfg.TileURL,
		Attribution: r.cfg.Attribution,
		PopupWidth:  r.cfg.PopupSize + 25,
		Tracks:      tracks,
	})
}

// Generate collects the tracks and writes the map to the configured output file.
// It returns the number of tracks drawn.
func (r *Renderer) Generate(ctx context.Context, mapping Mapping) (int, error) {
	tracks, err := r.Collect(ctx, mapping)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(r.cfg.OutputFile), 0755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	err = storage.WriteFileAtomic(r.cfg.OutputFile, func(w io.Writer) error {
		return r.Render(w, tracks)
	})
	if err != nil {
		return 0, fmt.Errorf("write map: %w", err)
	}
	if r.logger != nil {
		r.logger.Info("map written", zap.String("path", r.cfg.OutputFile), zap.Int("tracks", len(tracks)))
	}
	return len(tracks), nil
}

// Package thumbnail turns source photos into fixed-size square gallery assets.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoders
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp"
	"golang.org/x/image/draw"
	"go.uber.org/zap"

	"github.com/hyperjump/shashin/internal/models"
	"github.com/hyperjump/shashin/internal/storage"
)

// DecodeError reports a source photo whose bytes are not a decodable image.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Transformer writes "<id>.<ext>" thumbnails into an output directory.
type Transformer struct {
	outDir  string
	size    int
	encoder Encoder
	logger  *zap.Logger // optional
}

// TransformerOption configures a Transformer.
type TransformerOption func(*Transformer)

// WithLogger sets a logger for progress output.
func WithLogger(l *zap.Logger) TransformerOption {
	return func(t *Transformer) { t.logger = l }
}

// NewTransformer creates a transformer producing size×size images with enc.
func NewTransformer(outDir string, size int, enc Encoder, opts ...TransformerOption) *Transformer {
	t := &Transformer{outDir: outDir, size: size, encoder: enc}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Ext returns the extension of produced files.
func (t *Transformer) Ext() string { return t.encoder.Ext() }

// OutputPath returns where the thumbnail of asset id is written.
func (t *Transformer) OutputPath(id int) string {
	return filepath.Join(t.outDir, models.ImageName(id, t.encoder.Ext()))
}

// Transform reads the asset's source photo and writes its thumbnail, replacing any existing file.
func (t *Transformer) Transform(ctx context.Context, asset models.RankedAsset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := os.ReadFile(asset.Source.Path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", asset.Source.Name, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", &DecodeError{Source: asset.Source.Name, Err: err}
	}
	thumb := Thumbnail(img, t.size)
	out := t.OutputPath(asset.ID)
	err = storage.WriteFileAtomic(out, func(w io.Writer) error {
		return t.encoder.Encode(w, thumb)
	})
	if err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(out), err)
	}
	return out, nil
}

// TransformAll processes assets in order and stops at the first failure.
// It returns the number of thumbnails written.
func (t *Transformer) TransformAll(ctx context.Context, assets []models.RankedAsset) (int, error) {
	for i, a := range assets {
		if _, err := t.Transform(ctx, a); err != nil {
			return i, err
		}
		if t.logger != nil && (i+1)%10 == 0 {
			t.logger.Info("thumbnails written", zap.Int("done", i+1), zap.Int("total", len(assets)))
		}
	}
	if t.logger != nil {
		t.logger.Debug("all thumbnails written", zap.Int("total", len(assets)), zap.String("dir", t.outDir))
	}
	return len(assets), nil
}

// Thumbnail flattens img onto white, crops the largest centered square and resizes it to size×size.
func Thumbnail(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Over)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Src, nil)
	return dst
}

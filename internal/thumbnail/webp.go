//go:build cgo
// +build cgo

package thumbnail

import (
	"fmt"
	"image"
	"io"

	"github.com/chai2010/webp"
)

// WebPEncoder encodes lossy WebP through libwebp (requires CGO).
type WebPEncoder struct {
	quality float32
}

// NewWebPEncoder returns a lossy WebP encoder at quality.
func NewWebPEncoder(quality int) (*WebPEncoder, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("webp quality must be within 1..100, got %d", quality)
	}
	return &WebPEncoder{quality: float32(quality)}, nil
}

// Encode writes img as lossy WebP.
func (e *WebPEncoder) Encode(w io.Writer, img image.Image) error {
	if err := webp.Encode(w, img, &webp.Options{Lossless: false, Quality: e.quality}); err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}
	return nil
}

// Ext returns "webp".
func (e *WebPEncoder) Ext() string { return "webp" }

package thumbnail

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

// Encoder writes a thumbnail in one lossy format.
type Encoder interface {
	Encode(w io.Writer, img image.Image) error
	// Ext is the file extension of the encoded output, without dot.
	Ext() string
}

// NewEncoder returns the encoder for format ("webp" or "jpeg") at quality 1..100.
func NewEncoder(format string, quality int) (Encoder, error) {
	switch format {
	case "webp":
		enc, err := NewWebPEncoder(quality)
		if err != nil {
			return nil, err
		}
		return enc, nil
	case "jpeg", "jpg":
		return NewJPEGEncoder(quality), nil
	default:
		return nil, fmt.Errorf("unsupported thumbnail format %q", format)
	}
}

// JPEGEncoder encodes baseline JPEG.
type JPEGEncoder struct {
	quality int
}

// NewJPEGEncoder returns a JPEG encoder at quality.
func NewJPEGEncoder(quality int) *JPEGEncoder {
	return &JPEGEncoder{quality: quality}
}

// Encode writes img as JPEG.
func (e *JPEGEncoder) Encode(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: e.quality})
}

// Ext returns "jpg".
func (e *JPEGEncoder) Ext() string { return "jpg" }

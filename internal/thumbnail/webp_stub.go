//go:build !cgo
// +build !cgo

package thumbnail

import (
	"errors"
	"image"
	"io"
)

// WebPEncoder stub type when built without CGO (see webp.go for real implementation).
type WebPEncoder struct{}

// NewWebPEncoder returns an error when built without CGO (libwebp not available).
func NewWebPEncoder(_ int) (*WebPEncoder, error) {
	return nil, errors.New("webp encoder requires CGO; build with CGO_ENABLED=1 or set thumbnail.format to jpeg")
}

// Encode is never reached; NewWebPEncoder always fails without CGO.
func (e *WebPEncoder) Encode(_ io.Writer, _ image.Image) error {
	return errors.New("webp encoder not available")
}

// Ext returns "webp".
func (e *WebPEncoder) Ext() string { return "webp" }

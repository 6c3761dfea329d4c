// Package gallery renders ranked assets and their captions into the gallery document.
package gallery

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/hyperjump/shashin/internal/models"
)

// ErrCaptionNotFound matches every *CaptionNotFoundError.
var ErrCaptionNotFound = errors.New("caption not found")

// CaptionNotFoundError names an asset whose natural key has no caption.
type CaptionNotFoundError struct {
	ID     int
	Key    string
	Source string
}

func (e *CaptionNotFoundError) Error() string {
	return fmt.Sprintf("no caption for %s (asset %d, %s)", e.Key, e.ID, e.Source)
}

// Is reports whether target is ErrCaptionNotFound.
func (e *CaptionNotFoundError) Is(target error) bool { return target == ErrCaptionNotFound }

// Captions resolves a natural key to its caption text.
type Captions interface {
	Caption(key string) (string, bool)
}

// CheckCaptions returns every missing caption among assets, combined, or nil.
func CheckCaptions(assets []models.RankedAsset, captions Captions) error {
	var err error
	for _, a := range assets {
		if _, ok := captions.Caption(a.Key); !ok {
			err = multierr.Append(err, &CaptionNotFoundError{ID: a.ID, Key: a.Key, Source: a.Source.Name})
		}
	}
	return err
}

// BuildFragment renders one markdown image line per asset, ordered by date.
// The first asset without a caption aborts rendering.
func BuildFragment(assets []models.RankedAsset, captions Captions) (string, error) {
	sorted := make([]models.RankedAsset, len(assets))
	copy(sorted, assets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	lines := make([]string, 0, len(sorted))
	for _, a := range sorted {
		caption, ok := captions.Caption(a.Key)
		if !ok {
			return "", &CaptionNotFoundError{ID: a.ID, Key: a.Key, Source: a.Source.Name}
		}
		lines = append(lines, RenderLine(caption, a.Key, a.ImagePath))
	}
	return strings.Join(lines, "\n"), nil
}

// RenderLine formats a single entry as ![caption (key)](path).
func RenderLine(caption, key, imagePath string) string {
	return fmt.Sprintf("![%s (%s)](%s)", caption, key, imagePath)
}

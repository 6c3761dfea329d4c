// Package photos discovers source photos and reads their capture dates.
package photos

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/shashin/internal/models"
)

// Scanner lists the photos of a source directory.
type Scanner struct {
	extensions []string
	extractor  DateExtractor
	logger     *zap.Logger // optional
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets a logger for per-photo warnings.
func WithLogger(l *zap.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = l }
}

// WithExtractor replaces the default EXIF DateTimeOriginal extractor.
func WithExtractor(e DateExtractor) ScannerOption {
	return func(s *Scanner) { s.extractor = e }
}

// NewScanner creates a scanner accepting files whose extension is in extensions (case-insensitive).
func NewScanner(extensions []string, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		extensions: extensions,
		extractor:  NewExifDateExtractor(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan lists dir (non-recursively) in file name order, which is the discovery order,
// and extracts each photo's date. A photo without a date is returned with a nil Date.
// An unreadable file aborts the scan.
func (s *Scanner) Scan(ctx context.Context, dir string) ([]models.SourcePhoto, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}
	photos := make([]models.SourcePhoto, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !MatchExtension(entry.Name(), s.extensions) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// Resolve symlinks so only regular files are considered.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		photo := models.SourcePhoto{
			Name:      entry.Name(),
			Path:      path,
			Discovery: len(photos),
		}
		date, err := s.extractor.ExtractDate(path)
		switch {
		case err == nil:
			photo.Date = &date
		case errors.Is(err, ErrNoDate):
			if s.logger != nil {
				s.logger.Warn("no date found", zap.String("photo", entry.Name()), zap.Error(err))
			}
		default:
			return nil, fmt.Errorf("photo %s: %w", entry.Name(), err)
		}
		photos = append(photos, photo)
	}
	if s.logger != nil {
		s.logger.Debug("scanned source directory", zap.String("dir", dir), zap.Int("photos", len(photos)))
	}
	return photos, nil
}

// MatchExtension reports whether path's extension is in allowed (case-insensitive, dot optional).
// An empty allowed list matches everything.
func MatchExtension(path string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == ext {
			return true
		}
	}
	return false
}

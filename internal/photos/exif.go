package photos

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// ExifDateLayout is the timestamp layout of EXIF date tags.
const ExifDateLayout = "2006:01:02 15:04:05"

// ErrNoDate is returned when a photo carries no usable date. It is a warning, not a failure.
var ErrNoDate = errors.New("no date found")

// DateExtractor reads the capture date of a photo, truncated to the calendar day.
type DateExtractor interface {
	ExtractDate(path string) (time.Time, error)
}

// ExifDateExtractor reads a single EXIF timestamp tag.
type ExifDateExtractor struct {
	tag exif.FieldName
}

// NewExifDateExtractor returns an extractor for tag (e.g. "DateTimeOriginal").
func NewExifDateExtractor(tag string) *ExifDateExtractor {
	if tag == "" {
		tag = string(exif.DateTimeOriginal)
	}
	return &ExifDateExtractor{tag: exif.FieldName(tag)}
}

// ExtractDate opens path and reads its date. File errors are returned as-is;
// missing or malformed metadata yields ErrNoDate.
func (e *ExifDateExtractor) ExtractDate(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()
	return e.DateFromReader(f)
}

// DateFromReader reads the date from JPEG, TIFF or raw EXIF data.
func (e *ExifDateExtractor) DateFromReader(r io.Reader) (time.Time, error) {
	x, err := exif.Decode(r)
	if x == nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrNoDate, err)
	}
	// A partially decoded structure still carries the main IFD.
	tag, err := x.Get(e.tag)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrNoDate, err)
	}
	raw, err := tag.StringVal()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrNoDate, err)
	}
	return ParseExifDate(raw)
}

// ParseExifDate parses an EXIF timestamp and truncates it to its calendar date in UTC.
func ParseExifDate(raw string) (time.Time, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "\x00")
	t, err := time.Parse(ExifDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed timestamp %q", ErrNoDate, raw)
	}
	return CalendarDate(t), nil
}

// CalendarDate drops the time-of-day component.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Package trackmap renders GPX tracks with photo popups onto a Leaflet map.
package trackmap

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/tkrajina/gpxgo/gpx"
	"golang.org/x/image/draw"
)

// Track is one rendered trek.
type Track struct {
	File     string       `json:"file"`
	Name     string       `json:"name"`
	Date     string       `json:"date"`
	Category string       `json:"category"`
	Color    string       `json:"color"`
	Tooltip  string       `json:"tooltip"`
	Popup    string       `json:"popup"`
	Points   [][2]float64 `json:"points"`
}

// LoadPoints returns the latitude/longitude pairs of every segment of the file's first track.
func LoadPoints(path string) ([][2]float64, error) {
	g, err := gpx.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse gpx: %w", err)
	}
	if len(g.Tracks) == 0 {
		return nil, fmt.Errorf("no track in %s", path)
	}
	var points [][2]float64
	for _, seg := range g.Tracks[0].Segments {
		for _, p := range seg.Points {
			points = append(points, [2]float64{p.Latitude, p.Longitude})
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("empty track in %s", path)
	}
	return points, nil
}

// PopupImage returns the image at path as base64 JPEG whose longest side is at most size.
// Smaller images are not enlarged.
func PopupImage(path string, size int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > size || h > size {
		if w >= h {
			h = max(1, h*size/w)
			w = size
		} else {
			w = max(1, w*size/h)
			h = size
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// TooltipText formats "name (date)".
func TooltipText(name, date string) string {
	return fmt.Sprintf("%s (%s)", name, date)
}

func popupHTML(tooltip, encoded string) string {
	return fmt.Sprintf(`%s<p><img src="data:image/jpeg;base64,%s"></p>`, html.EscapeString(tooltip), encoded)
}

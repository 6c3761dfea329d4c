// Package photostest builds JPEG fixtures carrying an EXIF capture date.
package photostest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"testing"
)

// ExifSegment returns a raw "Exif\x00\x00" payload whose Exif IFD holds DateTimeOriginal = date.
func ExifSegment(date string) []byte {
	le := binary.LittleEndian
	var b bytes.Buffer
	b.WriteString("Exif\x00\x00")

	var tiff bytes.Buffer
	tiff.WriteString("II")
	_ = binary.Write(&tiff, le, uint16(42))
	_ = binary.Write(&tiff, le, uint32(8))
	// IFD0: ExifIFDPointer -> 26
	_ = binary.Write(&tiff, le, uint16(1))
	_ = binary.Write(&tiff, le, uint16(0x8769))
	_ = binary.Write(&tiff, le, uint16(4))
	_ = binary.Write(&tiff, le, uint32(1))
	_ = binary.Write(&tiff, le, uint32(26))
	_ = binary.Write(&tiff, le, uint32(0))
	// Exif IFD: DateTimeOriginal -> 44
	value := append([]byte(date), 0)
	_ = binary.Write(&tiff, le, uint16(1))
	_ = binary.Write(&tiff, le, uint16(0x9003))
	_ = binary.Write(&tiff, le, uint16(2))
	_ = binary.Write(&tiff, le, uint32(len(value)))
	_ = binary.Write(&tiff, le, uint32(44))
	_ = binary.Write(&tiff, le, uint32(0))
	tiff.Write(value)

	b.Write(tiff.Bytes())
	return b.Bytes()
}

// JPEG encodes a w×h image filled with c. When date is non-empty an APP1 EXIF segment is inserted after SOI.
func JPEG(t testing.TB, w, h int, c color.Color, date string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if date == "" {
		return data
	}
	seg := ExifSegment(date)
	out := make([]byte, 0, len(data)+len(seg)+4)
	out = append(out, data[:2]...)
	out = append(out, 0xFF, 0xE1)
	out = binary.BigEndian.AppendUint16(out, uint16(len(seg)+2))
	out = append(out, seg...)
	out = append(out, data[2:]...)
	return out
}

// WriteJPEG writes a fixture produced by JPEG to path.
func WriteJPEG(t testing.TB, path string, w, h int, c color.Color, date string) {
	t.Helper()
	if err := os.WriteFile(path, JPEG(t, w, h, c, date), 0644); err != nil {
		t.Fatal(err)
	}
}

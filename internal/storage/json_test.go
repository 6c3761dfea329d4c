package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/shashin/internal/models"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestFileStorage_LoadMissing(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(filepath.Join(dir, "embeddings.json"), filepath.Join(dir, "assets.json"))
	idx, err := s.LoadIndex(context.Background())
	if err != nil || idx != nil {
		t.Fatalf("LoadIndex on missing file = %v, %v; want nil, nil", idx, err)
	}
	m, err := s.LoadManifest(context.Background())
	if err != nil || m != nil {
		t.Fatalf("LoadManifest on missing file = %v, %v; want nil, nil", m, err)
	}
}

func TestFileStorage_SaveIndexSortsAndStamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "embeddings.json")
	s := NewFileStorage(path, filepath.Join(dir, "assets.json"), WithClock(fixedClock))
	ctx := context.Background()

	idx := models.NewEmbeddingIndex("sentence-transformers/all-MiniLM-L6-v2")
	idx.Embeddings = append(idx.Embeddings,
		models.EmbeddingRecord{ID: 2, ImagePath: "./2.webp", Date: "02/01/2024", Description: "b", Embedding: []float32{0.5, 0.25}},
		models.EmbeddingRecord{ID: 1, ImagePath: "./1.webp", Date: "01/01/2024", Description: "a", Embedding: []float32{1, 0}},
	)
	if err := s.SaveIndex(ctx, idx); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"version\": \"1.0\"") {
		t.Errorf("expected two-space indented output, got:\n%s", data)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"version", "model", "generated_at", "embeddings"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if raw["generated_at"] != "2024-06-01T12:00:00Z" {
		t.Errorf("generated_at = %v", raw["generated_at"])
	}

	loaded, err := s.LoadIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Embeddings) != 2 || loaded.Embeddings[0].ID != 1 || loaded.Embeddings[1].ID != 2 {
		t.Fatalf("records not sorted: %+v", loaded.Embeddings)
	}
	if loaded.Embeddings[1].Embedding[1] != 0.25 {
		t.Errorf("vector not preserved: %v", loaded.Embeddings[1].Embedding)
	}
}

func TestFileStorage_SaveEmptyIndexWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "embeddings.json")
	s := NewFileStorage(path, filepath.Join(dir, "assets.json"))
	if err := s.SaveIndex(context.Background(), &models.EmbeddingIndex{Model: "m"}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"embeddings": []`) {
		t.Errorf("expected empty embeddings array, got %s", data)
	}
}

func TestFileStorage_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "embeddings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStorage(path, filepath.Join(dir, "assets.json"))
	if _, err := s.LoadIndex(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFileStorage_ManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(filepath.Join(dir, "embeddings.json"), filepath.Join(dir, "assets.json"))
	ctx := context.Background()
	m := &models.AssetManifest{
		Version:     models.ManifestVersion,
		ImageFormat: "webp",
		Assets:      []models.ManifestAsset{{ID: 1, ImagePath: "./1.webp", Date: "01/01/2024", Source: "a.jpg"}},
	}
	if err := s.SaveManifest(ctx, m); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadManifest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got.Assets) != 1 || got.Assets[0].Source != "a.jpg" {
		t.Fatalf("LoadManifest = %+v", got)
	}
	if len(s.Paths()) != 2 {
		t.Errorf("Paths = %v", s.Paths())
	}
}

func TestWriteFileAtomic_KeepsOldFileOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("encoder failed")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "old" {
		t.Errorf("file changed to %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %d entries", len(entries))
	}
}

// Package config provides configuration loading and structs for the shashin gallery tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Gallery   GalleryConfig   `yaml:"gallery"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`
	Map       MapConfig       `yaml:"map"`
}

// GalleryConfig holds the photo source and the generated site locations.
// TemplateFile, OutputFile and ManifestFile are relative to SiteDir unless absolute.
type GalleryConfig struct {
	SourceDir     string   `yaml:"source_dir"`
	SiteDir       string   `yaml:"site_dir"`
	MappingFile   string   `yaml:"mapping_file"`
	TemplateFile  string   `yaml:"template_file"`
	OutputFile    string   `yaml:"output_file"`
	ManifestFile  string   `yaml:"manifest_file"`
	Marker        string   `yaml:"marker"`
	Extensions    []string `yaml:"extensions"`
	UndatedPolicy string   `yaml:"undated_policy"` // "quarantine" or "fail"
	DateTag       string   `yaml:"date_tag"`
}

// ThumbnailConfig holds thumbnail encoding settings.
type ThumbnailConfig struct {
	Size    int    `yaml:"size"`
	Quality int    `yaml:"quality"`
	Format  string `yaml:"format"` // "webp" or "jpeg"
}

// EmbeddingConfig holds remote embedding settings. Endpoint may contain a {model} placeholder.
type EmbeddingConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Model      string        `yaml:"model"`
	Token      string        `yaml:"token"`
	TokenEnv   string        `yaml:"token_env"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
	PauseEvery int           `yaml:"pause_every"`
	Pause      time.Duration `yaml:"pause"`
	OutputFile string        `yaml:"output_file"`
	CacheSize  int           `yaml:"cache_size"`
}

// SearchConfig holds caption search settings.
type SearchConfig struct {
	DefaultLimit   int     `yaml:"default_limit"`
	MaxLimit       int     `yaml:"max_limit"`
	TopKCandidates int     `yaml:"top_k_candidates"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WatchConfig holds source directory watch settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Embed    bool          `yaml:"embed"` // also run an incremental embed after each rebuild
}

// MapConfig holds track map settings.
type MapConfig struct {
	GPXDir      string            `yaml:"gpx_dir"`
	ImageDir    string            `yaml:"img_dir"`
	MappingFile string            `yaml:"mapping_file"`
	OutputFile  string            `yaml:"output_file"`
	Center      []float64         `yaml:"center"`
	Zoom        int               `yaml:"zoom"`
	TileURL     string            `yaml:"tile_url"`
	Attribution string            `yaml:"attribution"`
	PopupSize   int               `yaml:"popup_size"`
	Colors      map[string]string `yaml:"colors"`
}

// Load reads and parses the config file at path, applies defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.expandPaths(filepath.Dir(path))
	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns a default config when path does not exist.
// Relative paths of the default config are resolved against the working directory.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = &Config{}
	ApplyDefaults(cfg)
	cwd, cwdErr := os.Getwd()
	if cwdErr != nil {
		return nil, fmt.Errorf("working directory: %w", cwdErr)
	}
	cfg.expandPaths(cwd)
	return cfg, nil
}

// LoadEnv loads KEY=VALUE pairs from the given .env files into the process environment.
// Missing files are ignored; variables already set are not overridden.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ResolveToken returns the configured token, falling back to the TokenEnv variable.
func (e *EmbeddingConfig) ResolveToken() string {
	if e.Token != "" {
		return e.Token
	}
	if e.TokenEnv == "" {
		return ""
	}
	return os.Getenv(e.TokenEnv)
}

// EndpointURL returns the endpoint with the model placeholder filled in.
func (e *EmbeddingConfig) EndpointURL() string {
	return strings.ReplaceAll(e.Endpoint, "{model}", e.Model)
}

// Ext returns the file extension of thumbnails in Format.
func (t *ThumbnailConfig) Ext() string {
	if t.Format == "jpeg" {
		return "jpg"
	}
	return t.Format
}

// TemplatePath returns the gallery template location.
func (g *GalleryConfig) TemplatePath() string { return g.sitePath(g.TemplateFile) }

// OutputPath returns the generated gallery document location.
func (g *GalleryConfig) OutputPath() string { return g.sitePath(g.OutputFile) }

// ManifestPath returns the asset manifest location.
func (g *GalleryConfig) ManifestPath() string { return g.sitePath(g.ManifestFile) }

// IndexPath returns the embedding index location.
func (c *Config) IndexPath() string { return c.Gallery.sitePath(c.Embedding.OutputFile) }

func (g *GalleryConfig) sitePath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(g.SiteDir, name)
}

// Validate reports settings that cannot be acted upon.
func (c *Config) Validate() error {
	switch c.Thumbnail.Format {
	case "webp", "jpeg":
	default:
		return fmt.Errorf("unsupported thumbnail format %q (supported: webp, jpeg)", c.Thumbnail.Format)
	}
	switch c.Gallery.UndatedPolicy {
	case "quarantine", "fail":
	default:
		return fmt.Errorf("unsupported undated_policy %q (supported: quarantine, fail)", c.Gallery.UndatedPolicy)
	}
	if c.Thumbnail.Quality < 1 || c.Thumbnail.Quality > 100 {
		return fmt.Errorf("thumbnail quality must be within 1..100, got %d", c.Thumbnail.Quality)
	}
	if c.Thumbnail.Size <= 0 {
		return fmt.Errorf("thumbnail size must be positive, got %d", c.Thumbnail.Size)
	}
	if len(c.Map.Center) != 2 {
		return fmt.Errorf("map center must have 2 values, got %d", len(c.Map.Center))
	}
	return nil
}

func (c *Config) expandPaths(configDir string) {
	c.Gallery.SourceDir = expandPath(c.Gallery.SourceDir, configDir)
	c.Gallery.SiteDir = expandPath(c.Gallery.SiteDir, configDir)
	c.Gallery.MappingFile = expandPath(c.Gallery.MappingFile, configDir)
	c.Map.GPXDir = expandPath(c.Map.GPXDir, configDir)
	c.Map.ImageDir = expandPath(c.Map.ImageDir, configDir)
	c.Map.MappingFile = expandPath(c.Map.MappingFile, configDir)
	c.Map.OutputFile = expandPath(c.Map.OutputFile, configDir)
}

// expandPath converts a path to absolute. Paths starting with "~/" are relative to the home
// directory; other relative paths are relative to configDir.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(configDir, path)
}

package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultEndpoint = "https://router.huggingface.co/hf-inference/models/{model}/pipeline/feature-extraction"
	DefaultModel    = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultMarker   = "INSERT"

	// DefaultDimensions is the vector length of DefaultModel.
	DefaultDimensions = 384
)

// DefaultTrackColors maps track categories to line colors.
var DefaultTrackColors = map[string]string{
	"multi-day": "#1f77b4",
	"packraft":  "#ff7f0e",
	"day trip":  "#2ca02c",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	g := &cfg.Gallery
	if g.SourceDir == "" {
		g.SourceDir = "photos"
	}
	if g.SiteDir == "" {
		g.SiteDir = "content/food"
	}
	if g.MappingFile == "" {
		g.MappingFile = "content/food/mapping.json"
	}
	if g.TemplateFile == "" {
		g.TemplateFile = "food_backup.md"
	}
	if g.OutputFile == "" {
		g.OutputFile = "food.md"
	}
	if g.ManifestFile == "" {
		g.ManifestFile = "assets.json"
	}
	if g.Marker == "" {
		g.Marker = DefaultMarker
	}
	if g.Extensions == nil {
		g.Extensions = []string{".jpg", ".jpeg"}
	}
	if g.UndatedPolicy == "" {
		g.UndatedPolicy = "quarantine"
	}
	if g.DateTag == "" {
		g.DateTag = "DateTimeOriginal"
	}

	if cfg.Thumbnail.Size == 0 {
		cfg.Thumbnail.Size = 750
	}
	if cfg.Thumbnail.Quality == 0 {
		cfg.Thumbnail.Quality = 75
	}
	if cfg.Thumbnail.Format == "" {
		cfg.Thumbnail.Format = "webp"
	}

	e := &cfg.Embedding
	if e.Endpoint == "" {
		e.Endpoint = DefaultEndpoint
	}
	if e.Model == "" {
		e.Model = DefaultModel
	}
	// Other models keep zero dimensions unless configured, which skips the length check.
	if e.Dimensions == 0 && e.Model == DefaultModel {
		e.Dimensions = DefaultDimensions
	}
	if e.TokenEnv == "" {
		e.TokenEnv = "HF_TOKEN"
	}
	if e.Timeout == 0 {
		e.Timeout = 60 * time.Second
	}
	if e.PauseEvery == 0 {
		e.PauseEvery = 10
	}
	if e.Pause == 0 {
		e.Pause = time.Second
	}
	if e.OutputFile == "" {
		e.OutputFile = "embeddings.json"
	}
	if e.CacheSize == 0 {
		e.CacheSize = 1000
	}

	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.TopKCandidates == 0 {
		cfg.Search.TopKCandidates = 50
	}
	if cfg.Search.KeywordWeight == 0 && cfg.Search.SemanticWeight == 0 {
		cfg.Search.KeywordWeight = 0.5
		cfg.Search.SemanticWeight = 0.5
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 400 * time.Millisecond
	}

	m := &cfg.Map
	if m.GPXDir == "" {
		m.GPXDir = "map/tracks"
	}
	if m.ImageDir == "" {
		m.ImageDir = "map/img"
	}
	if m.MappingFile == "" {
		m.MappingFile = "map/mapping.json"
	}
	if m.OutputFile == "" {
		m.OutputFile = "map/treks.html"
	}
	if m.Center == nil {
		m.Center = []float64{51.057056, 3.702139}
	}
	if m.Zoom == 0 {
		m.Zoom = 4
	}
	if m.TileURL == "" {
		m.TileURL = "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png"
	}
	if m.Attribution == "" {
		m.Attribution = "&copy; OpenStreetMap contributors &copy; CARTO"
	}
	if m.PopupSize == 0 {
		m.PopupSize = 300
	}
	if m.Colors == nil {
		m.Colors = make(map[string]string, len(DefaultTrackColors))
		for k, v := range DefaultTrackColors {
			m.Colors[k] = v
		}
	}
}

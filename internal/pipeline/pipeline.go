// Package pipeline wires the scanner, ranker, transformer, assembler and synchronizer
// into the batch runs behind each command.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/shashin/internal/config"
	"github.com/hyperjump/shashin/internal/embedding"
	"github.com/hyperjump/shashin/internal/photos"
	"github.com/hyperjump/shashin/internal/storage"
	"go.uber.org/zap"
)

// ErrMissingToken is returned when the remote embedder is needed and no token is configured.
var ErrMissingToken = errors.New("embedding token required (--token, HF_TOKEN or .env)")

// Pipeline runs batches for one configuration. It keeps no state between runs.
type Pipeline struct {
	cfg       *config.Config
	store     storage.Storage
	embedder  embedding.Embedder   // optional; remote client otherwise
	extractor photos.DateExtractor // optional; EXIF otherwise
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the base logger. Each run derives a child logger tagged with its run_id.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithStorage replaces the JSON file storage derived from the config.
func WithStorage(s storage.Storage) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithEmbedder replaces the remote embedding client.
func WithEmbedder(e embedding.Embedder) Option {
	return func(p *Pipeline) { p.embedder = e }
}

// WithDateExtractor replaces the EXIF date extractor.
func WithDateExtractor(e photos.DateExtractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithSleeper replaces the pause between embedding batches.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pipeline) { p.sleep = sleep }
}

// WithClock sets the clock used for manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline for cfg. cfg must already have defaults applied.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = storage.NewFileStorage(cfg.IndexPath(), cfg.Gallery.ManifestPath(), storage.WithClock(p.now))
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *config.Config { return p.cfg }

// Storage returns the manifest and index storage.
func (p *Pipeline) Storage() storage.Storage { return p.store }

// remoteEmbedder returns the injected embedder, or a Hugging Face client for token.
// The returned release func closes only clients created here.
func (p *Pipeline) remoteEmbedder(token string) (embedding.Embedder, func(), error) {
	if p.embedder != nil {
		return p.embedder, func() {}, nil
	}
	if token == "" {
		token = p.cfg.Embedding.ResolveToken()
	}
	if token == "" {
		return nil, nil, ErrMissingToken
	}
	e := p.cfg.Embedding
	client, err := embedding.NewHFClient(embedding.HFConfig{
		URL:        e.EndpointURL(),
		Token:      token,
		Dimensions: e.Dimensions,
		Timeout:    e.Timeout,
	}, embedding.WithLogger(p.logger))
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

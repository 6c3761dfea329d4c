package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrUnexpectedShape is returned when a feature-extraction response is not a flat vector
// or a batch of flat vectors.
var ErrUnexpectedShape = errors.New("unexpected embedding shape")

// DefaultTimeout bounds one feature-extraction request.
const DefaultTimeout = 60 * time.Second

// HFConfig configures an HFClient.
type HFConfig struct {
	// URL is the full feature-extraction endpoint of one model.
	URL string
	// Token is sent as a bearer token. Required.
	Token string
	// Dimensions is the expected vector length; zero skips the check.
	Dimensions int
	Timeout    time.Duration
}

// HFClient calls a Hugging Face style feature-extraction endpoint.
type HFClient struct {
	client     *http.Client
	url        string
	token      string
	dimensions int
	logger     *zap.Logger // optional
}

// HFOption configures an HFClient.
type HFOption func(*HFClient)

// WithLogger sets a logger for request diagnostics.
func WithLogger(l *zap.Logger) HFOption {
	return func(c *HFClient) { c.logger = l }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) HFOption {
	return func(c *HFClient) { c.client = hc }
}

type featureRequest struct {
	Inputs string `json:"inputs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHFClient creates a feature-extraction client.
func NewHFClient(cfg HFConfig, opts ...HFOption) (*HFClient, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("embedding: API token is required")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("embedding: endpoint URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &HFClient{
		client:     &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		token:      cfg.Token,
		dimensions: cfg.Dimensions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Embed returns the embedding of text as a flat vector.
func (c *HFClient) Embed(ctx context.Context, text string) ([]float32, error) {
	raw, err := c.post(ctx, featureRequest{Inputs: text})
	if err != nil {
		return nil, err
	}
	vec, err := flatten(raw)
	if err != nil {
		return nil, err
	}
	if err := c.checkDimensions(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// Dimensions returns the configured vector length, or zero when unchecked.
func (c *HFClient) Dimensions() int { return c.dimensions }

// Close releases idle connections.
func (c *HFClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HFClient) post(ctx context.Context, payload featureRequest) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("feature extraction",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)))
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("embedding service (status %d): %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("embedding service: status %d", resp.StatusCode)
	}
	return data, nil
}

func (c *HFClient) checkDimensions(vec []float32) error {
	if c.dimensions > 0 && len(vec) != c.dimensions {
		return fmt.Errorf("%w: got %d dimensions, want %d", ErrUnexpectedShape, len(vec), c.dimensions)
	}
	return nil
}

// flatten accepts a vector or a one-row batch and returns the vector.
func flatten(raw json.RawMessage) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(raw, &flat); err == nil {
		if len(flat) == 0 {
			return nil, fmt.Errorf("%w: empty vector", ErrUnexpectedShape)
		}
		return flat, nil
	}
	var nested [][]float32
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if len(nested) == 0 || len(nested[0]) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrUnexpectedShape)
	}
	return nested[0], nil
}

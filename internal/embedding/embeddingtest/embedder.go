// Package embeddingtest provides a scripted in-memory embedder for tests.
package embeddingtest

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/hyperjump/shashin/pkg/utils"
)

// ErrUnavailable is returned for texts the embedder was told to fail on.
var ErrUnavailable = errors.New("service unavailable")

// Embedder returns unit vectors seeded by the text, so equal captions get equal vectors.
// It records every call and fails on the texts passed to New.
type Embedder struct {
	dims int

	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

// New returns an embedder of dims dimensions that fails on each of failOn.
func New(dims int, failOn ...string) *Embedder {
	e := &Embedder{dims: dims, fail: make(map[string]bool, len(failOn))}
	for _, text := range failOn {
		e.fail[text] = true
	}
	return e
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.calls = append(e.calls, text)
	failing := e.fail[text]
	e.mu.Unlock()
	if failing {
		return nil, ErrUnavailable
	}
	return Vector(text, e.dims), nil
}

// Calls returns the embedded texts in call order.
func (e *Embedder) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *Embedder) Dimensions() int { return e.dims }

func (e *Embedder) Close() error { return nil }

// Vector derives a unit vector of dims components from text with an xorshift stream.
func Vector(text string, dims int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	state := h.Sum64() | 1
	vec := make([]float32, dims)
	for i := range vec {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		vec[i] = float32(int64(state>>11)%2001-1000) / 1000
	}
	utils.NormalizeL2(vec)
	return vec
}

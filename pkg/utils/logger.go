package utils

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewLogger returns a zap logger. When debug is true, uses development config
// (human-readable, debug level); otherwise uses production config (JSON, info level).
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// WithRunID returns a child logger tagged with a fresh run_id, and the ID itself.
// A nil logger is replaced by a no-op logger.
func WithRunID(l *zap.Logger) (*zap.Logger, string) {
	if l == nil {
		l = zap.NewNop()
	}
	id := uuid.New().String()
	return l.With(zap.String("run_id", id)), id
}

package search

import (
	"strings"

	"github.com/hyperjump/shashin/internal/config"
	"github.com/hyperjump/shashin/internal/models"
)

// ProcessQuery trims the query text and applies limits and mode defaults from cfg.
func ProcessQuery(query *models.SearchQuery, cfg *config.SearchConfig) error {
	query.Query = strings.TrimSpace(query.Query)
	return query.Validate(cfg.DefaultLimit, cfg.MaxLimit)
}

// weights returns the fusion weights for the enabled search modes.
func weights(query *models.SearchQuery, cfg *config.SearchConfig) (kw, sem float64) {
	switch {
	case query.KeywordEnabled && !query.SemanticEnabled:
		return 1, 0
	case query.SemanticEnabled && !query.KeywordEnabled:
		return 0, 1
	default:
		return cfg.KeywordWeight, cfg.SemanticWeight
	}
}

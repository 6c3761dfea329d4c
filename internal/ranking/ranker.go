// Package ranking orders source photos chronologically and assigns their asset IDs.
package ranking

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/shashin/internal/models"
)

// ErrUndatedPhoto is returned under PolicyFail when a photo has no date.
var ErrUndatedPhoto = errors.New("photo has no date")

// Result is the outcome of ranking. Undated holds quarantined photos in discovery order.
type Result struct {
	Assets  []models.RankedAsset
	Undated []models.SourcePhoto
}

// Ranker assigns dense, chronological IDs. It performs no I/O.
type Ranker struct {
	config *RankingConfig
}

// NewRanker creates a Ranker from a copy of config. A nil config uses DefaultRankingConfig.
func NewRanker(config *RankingConfig) *Ranker {
	c := DefaultRankingConfig()
	if config != nil {
		*c = *config
	}
	c.ApplyDefaults()
	return &Ranker{config: c}
}

// Rank orders dated photos by date ascending, breaking ties by discovery order,
// and numbers them 1..N in that order. Identical input always yields identical output.
func (r *Ranker) Rank(photos []models.SourcePhoto) (*Result, error) {
	res := &Result{}
	dated := make([]models.SourcePhoto, 0, len(photos))
	for _, p := range photos {
		if p.HasDate() {
			dated = append(dated, p)
			continue
		}
		res.Undated = append(res.Undated, p)
	}
	sort.SliceStable(res.Undated, func(i, j int) bool { return res.Undated[i].Discovery < res.Undated[j].Discovery })
	if len(res.Undated) > 0 && r.config.Policy == PolicyFail {
		names := make([]string, len(res.Undated))
		for i, p := range res.Undated {
			names[i] = p.Name
		}
		return nil, fmt.Errorf("%w: %s", ErrUndatedPhoto, strings.Join(names, ", "))
	}

	sort.SliceStable(dated, func(i, j int) bool {
		di, dj := *dated[i].Date, *dated[j].Date
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return dated[i].Discovery < dated[j].Discovery
	})

	res.Assets = make([]models.RankedAsset, len(dated))
	for i, p := range dated {
		id := i + 1
		res.Assets[i] = models.RankedAsset{
			ID:        id,
			Source:    p,
			Date:      *p.Date,
			Key:       models.NaturalKey(*p.Date),
			ImagePath: models.ImagePath(id, r.config.ImageExt),
		}
	}
	return res, nil
}

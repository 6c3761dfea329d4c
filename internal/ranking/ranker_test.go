package ranking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/shashin/internal/models"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func photo(name string, discovery int, date *time.Time) models.SourcePhoto {
	return models.SourcePhoto{Name: name, Path: "/src/" + name, Discovery: discovery, Date: date}
}

func TestRank_ChronologicalDenseIDs(t *testing.T) {
	photos := []models.SourcePhoto{
		photo("A.jpg", 0, day(2024, 3, 2)),
		photo("B.jpg", 1, day(2024, 3, 1)),
		photo("C.jpg", 2, day(2024, 3, 3)),
	}
	res, err := NewRanker(nil).Rank(photos)
	require.NoError(t, err)
	require.Len(t, res.Assets, 3)

	assert.Equal(t, "B.jpg", res.Assets[0].Source.Name)
	assert.Equal(t, "A.jpg", res.Assets[1].Source.Name)
	assert.Equal(t, "C.jpg", res.Assets[2].Source.Name)
	for i, a := range res.Assets {
		assert.Equal(t, i+1, a.ID)
	}
	assert.Equal(t, "01/03/2024", res.Assets[0].Key)
	assert.Equal(t, "./1.webp", res.Assets[0].ImagePath)
}

func TestRank_TiesBrokenByDiscoveryOrder(t *testing.T) {
	same := day(2024, 5, 5)
	photos := []models.SourcePhoto{
		photo("z.jpg", 2, same),
		photo("x.jpg", 0, same),
		photo("y.jpg", 1, same),
	}
	res, err := NewRanker(nil).Rank(photos)
	require.NoError(t, err)
	assert.Equal(t, "x.jpg", res.Assets[0].Source.Name)
	assert.Equal(t, "y.jpg", res.Assets[1].Source.Name)
	assert.Equal(t, "z.jpg", res.Assets[2].Source.Name)
}

func TestRank_Deterministic(t *testing.T) {
	photos := []models.SourcePhoto{
		photo("a.jpg", 0, day(2023, 1, 2)),
		photo("b.jpg", 1, day(2023, 1, 1)),
		photo("c.jpg", 2, day(2023, 1, 2)),
	}
	r := NewRanker(nil)
	first, err := r.Rank(photos)
	require.NoError(t, err)
	second, err := r.Rank(photos)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRank_AppendingLaterPhotoKeepsPrefix(t *testing.T) {
	base := []models.SourcePhoto{
		photo("a.jpg", 0, day(2023, 1, 1)),
		photo("b.jpg", 1, day(2023, 1, 2)),
	}
	r := NewRanker(nil)
	before, err := r.Rank(base)
	require.NoError(t, err)
	after, err := r.Rank(append(base, photo("c.jpg", 2, day(2023, 2, 1))))
	require.NoError(t, err)

	require.Len(t, after.Assets, 3)
	for i := range before.Assets {
		assert.Equal(t, before.Assets[i].ID, after.Assets[i].ID)
		assert.Equal(t, before.Assets[i].Source.Name, after.Assets[i].Source.Name)
	}
	assert.Equal(t, 3, after.Assets[2].ID)
}

func TestRank_EmptyInput(t *testing.T) {
	res, err := NewRanker(nil).Rank(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Assets)
	assert.Empty(t, res.Undated)
}

func TestRank_QuarantinesUndated(t *testing.T) {
	photos := []models.SourcePhoto{
		photo("late.jpg", 0, nil),
		photo("dated.jpg", 1, day(2024, 1, 1)),
		photo("early.jpg", 2, nil),
	}
	res, err := NewRanker(&RankingConfig{Policy: PolicyQuarantine}).Rank(photos)
	require.NoError(t, err)
	require.Len(t, res.Assets, 1)
	assert.Equal(t, 1, res.Assets[0].ID)
	require.Len(t, res.Undated, 2)
	assert.Equal(t, "late.jpg", res.Undated[0].Name)
	assert.Equal(t, "early.jpg", res.Undated[1].Name)
}

func TestRank_FailPolicy(t *testing.T) {
	photos := []models.SourcePhoto{
		photo("dated.jpg", 0, day(2024, 1, 1)),
		photo("undated.jpg", 1, nil),
	}
	_, err := NewRanker(&RankingConfig{Policy: PolicyFail}).Rank(photos)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUndatedPhoto))
	assert.Contains(t, err.Error(), "undated.jpg")
}

func TestRank_ImageExtension(t *testing.T) {
	res, err := NewRanker(&RankingConfig{ImageExt: "jpg"}).Rank([]models.SourcePhoto{photo("a.jpg", 0, day(2024, 1, 1))})
	require.NoError(t, err)
	assert.Equal(t, "./1.jpg", res.Assets[0].ImagePath)
}

func TestNewRanker_LeavesCallerConfigUntouched(t *testing.T) {
	cfg := &RankingConfig{}
	r := NewRanker(cfg)
	assert.Equal(t, RankingConfig{}, *cfg)

	cfg.ImageExt = "jpg"
	res, err := r.Rank([]models.SourcePhoto{photo("a.jpg", 0, day(2024, 1, 1))})
	require.NoError(t, err)
	assert.Equal(t, "./1.webp", res.Assets[0].ImagePath)
}

func TestParseUndatedPolicy(t *testing.T) {
	p, err := ParseUndatedPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyQuarantine, p)
	p, err = ParseUndatedPolicy("fail")
	require.NoError(t, err)
	assert.Equal(t, PolicyFail, p)
	_, err = ParseUndatedPolicy("skip")
	assert.Error(t, err)
}

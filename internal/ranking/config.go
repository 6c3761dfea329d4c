package ranking

import "fmt"

// UndatedPolicy decides what happens to photos without a date.
type UndatedPolicy string

const (
	// PolicyQuarantine leaves undated photos out of the ranking and reports them separately.
	PolicyQuarantine UndatedPolicy = "quarantine"
	// PolicyFail aborts ranking when any photo is undated.
	PolicyFail UndatedPolicy = "fail"
)

// ParseUndatedPolicy converts a configuration value into a policy.
func ParseUndatedPolicy(s string) (UndatedPolicy, error) {
	switch UndatedPolicy(s) {
	case PolicyQuarantine, "":
		return PolicyQuarantine, nil
	case PolicyFail:
		return PolicyFail, nil
	default:
		return "", fmt.Errorf("unknown undated policy %q", s)
	}
}

// RankingConfig holds ranking settings.
type RankingConfig struct {
	Policy   UndatedPolicy
	ImageExt string // extension of the generated assets, without dot
}

// DefaultRankingConfig returns the default configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		Policy:   PolicyQuarantine,
		ImageExt: "webp",
	}
}

// ApplyDefaults fills zero values.
func (c *RankingConfig) ApplyDefaults() {
	if c.Policy == "" {
		c.Policy = PolicyQuarantine
	}
	if c.ImageExt == "" {
		c.ImageExt = "webp"
	}
}

// Package plan decides what an organization's subscription tier allows.
// Tier membership is owned by the external billing provider; it is fetched
// at write time and never trusted from caller-supplied flags.
package plan

import "strings"

// Tier is a subscription level.
type Tier string

const (
	TierStarter    Tier = "starter"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// ParseTier maps a raw provider value to a Tier, defaulting to starter.
func ParseTier(raw string) Tier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(TierPro):
		return TierPro
	case string(TierEnterprise):
		return TierEnterprise
	default:
		return TierStarter
	}
}

// Limits are the per-tier feature gates.
type Limits struct {
	// MaxActiveJobs caps simultaneously active listings; <0 means unlimited.
	MaxActiveJobs int  `mapstructure:"max_active_jobs"`
	Featured      bool `mapstructure:"featured"`
}

// Unlimited reports whether the tier has no active-job cap.
func (l Limits) Unlimited() bool {
	return l.MaxActiveJobs < 0
}

func defaultLimits() map[Tier]Limits {
	return map[Tier]Limits{
		TierStarter:    {MaxActiveJobs: 3, Featured: false},
		TierPro:        {MaxActiveJobs: -1, Featured: true},
		TierEnterprise: {MaxActiveJobs: -1, Featured: true},
	}
}

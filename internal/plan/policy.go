package plan

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/hirewire/internal/config"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Policy answers plan-gating questions. Limits come from an optional
// plans.yaml and reload live when the file changes; defaults match the
// provider's published tiers.
type Policy struct {
	mu     sync.RWMutex
	limits map[Tier]Limits
}

func NewPolicy(cfg config.Config, log *zap.Logger) *Policy {
	p := &Policy{limits: defaultLimits()}

	file := strings.TrimSpace(cfg.PlanConfigFile)
	if file == "" {
		return p
	}

	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		log.Warn("plan config not loaded, using defaults",
			zap.String("file", file),
			zap.Error(err),
		)
		return p
	}
	p.apply(v, log)

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("plan config changed", zap.String("file", e.Name))
		p.apply(v, log)
	})
	v.WatchConfig()

	return p
}

func (p *Policy) apply(v *viper.Viper, log *zap.Logger) {
	parsed := map[string]Limits{}
	if err := v.UnmarshalKey("tiers", &parsed); err != nil {
		log.Warn("invalid plan config, keeping previous limits", zap.Error(err))
		return
	}

	limits := defaultLimits()
	for name, l := range parsed {
		limits[ParseTier(name)] = l
	}

	p.mu.Lock()
	p.limits = limits
	p.mu.Unlock()
}

// For returns the limits for a tier.
func (p *Policy) For(tier Tier) Limits {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if l, ok := p.limits[tier]; ok {
		return l
	}
	return p.limits[TierStarter]
}

// CanActivate reports whether the tier allows one more active job on top of
// the given active count.
func (p *Policy) CanActivate(tier Tier, activeCount int64) bool {
	l := p.For(tier)
	if l.Unlimited() {
		return true
	}
	return activeCount < int64(l.MaxActiveJobs)
}

// FeaturedAllowed reports whether the tier may flag listings as featured.
func (p *Policy) FeaturedAllowed(tier Tier) bool {
	return p.For(tier).Featured
}

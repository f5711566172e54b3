package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/smallbiznis/hirewire/internal/config"
)

const keySubmitApplicant = "applications:submit:%s"

// SubmitLimiter throttles application submissions per applicant. A nil
// limiter (no Redis configured) allows everything.
type SubmitLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewSubmitLimiter(lc fx.Lifecycle, cfg config.Config) *SubmitLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	if cfg.SubmitRatePerMin <= 0 || cfg.SubmitBurst <= 0 {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return &SubmitLimiter{
		bucket: NewTokenBucket(client),
		rate:   float64(cfg.SubmitRatePerMin) / time.Minute.Seconds(),
		burst:  cfg.SubmitBurst,
	}
}

func (l *SubmitLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow consumes one submission token for the applicant.
func (l *SubmitLimiter) Allow(ctx context.Context, applicantID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf(keySubmitApplicant, strings.TrimSpace(applicantID))
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}

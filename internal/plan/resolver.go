package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/hirewire/internal/config"
	"github.com/smallbiznis/hirewire/internal/identity"
	"go.uber.org/zap"
)

// Resolver looks up an organization's current plan tier. Implementations
// consult the billing provider at call time so mutations never trust
// caller-supplied plan state.
type Resolver interface {
	Resolve(ctx context.Context, orgID string) (Tier, error)
}

// NewResolver picks the provider-backed resolver when a provider URL is
// configured, otherwise falls back to the verified token claim.
func NewResolver(cfg config.Config, log *zap.Logger) Resolver {
	if strings.TrimSpace(cfg.PlanProviderURL) != "" {
		return newProviderResolver(cfg, log)
	}
	log.Info("plan provider not configured, resolving tier from token claims")
	return claimResolver{}
}

// claimResolver reads the plan claim the identity provider embedded in the
// session token.
type claimResolver struct{}

func (claimResolver) Resolve(ctx context.Context, _ string) (Tier, error) {
	return ParseTier(identity.FromContext(ctx).Plan), nil
}

// Static always resolves the same tier. Test helper.
type Static struct {
	Tier Tier
}

func (s Static) Resolve(context.Context, string) (Tier, error) {
	return s.Tier, nil
}

type cacheEntry struct {
	tier      Tier
	expiresAt time.Time
}

// providerResolver queries the billing provider's plan endpoint with a short
// TTL cache in front of it.
type providerResolver struct {
	baseURL string
	token   string
	ttl     time.Duration
	client  *http.Client
	log     *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func newProviderResolver(cfg config.Config, log *zap.Logger) *providerResolver {
	ttl := time.Duration(cfg.PlanCacheTTLSec) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &providerResolver{
		baseURL: strings.TrimRight(cfg.PlanProviderURL, "/"),
		token:   cfg.PlanProviderToken,
		ttl:     ttl,
		client:  &http.Client{Timeout: 5 * time.Second},
		log:     log.Named("plan.resolver"),
		cache:   map[string]cacheEntry{},
	}
}

func (r *providerResolver) Resolve(ctx context.Context, orgID string) (Tier, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return TierStarter, nil
	}

	now := time.Now()
	r.mu.Lock()
	if entry, ok := r.cache[orgID]; ok && now.Before(entry.expiresAt) {
		r.mu.Unlock()
		return entry.tier, nil
	}
	r.mu.Unlock()

	tier, err := r.fetch(ctx, orgID)
	if err != nil {
		return TierStarter, err
	}

	r.mu.Lock()
	r.cache[orgID] = cacheEntry{tier: tier, expiresAt: now.Add(r.ttl)}
	r.mu.Unlock()

	return tier, nil
}

func (r *providerResolver) fetch(ctx context.Context, orgID string) (Tier, error) {
	endpoint := fmt.Sprintf("%s/orgs/%s/plan", r.baseURL, url.PathEscape(orgID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return TierStarter, err
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return TierStarter, fmt.Errorf("plan lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return TierStarter, nil
	}
	if resp.StatusCode != http.StatusOK {
		return TierStarter, fmt.Errorf("plan lookup: provider returned %d", resp.StatusCode)
	}

	var body struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return TierStarter, fmt.Errorf("plan lookup: %w", err)
	}

	return ParseTier(body.Plan), nil
}

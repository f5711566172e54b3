package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/hirewire/internal/config"
)

// Claims is the provider token payload. org_id, org_role and plan are the
// provider's custom claims; they are absent when the session is not scoped
// to an organization.
type Claims struct {
	OrgID   string `json:"org_id,omitempty"`
	OrgRole string `json:"org_role,omitempty"`
	Plan    string `json:"plan,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrNoSecret     = errors.New("auth secret not configured")
)

// Resolver verifies provider tokens and produces Identity values.
type Resolver struct {
	secret []byte
}

func NewResolver(cfg config.Config) *Resolver {
	return &Resolver{secret: []byte(cfg.AuthJWTSecret)}
}

// Resolve verifies the raw token and returns the identity it carries.
func (r *Resolver) Resolve(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrInvalidToken
	}
	if len(r.secret) == 0 {
		return Identity{}, ErrNoSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		Subject: subject,
		OrgID:   strings.TrimSpace(claims.OrgID),
		OrgRole: NormalizeRole(claims.OrgRole),
		Plan:    strings.ToLower(strings.TrimSpace(claims.Plan)),
	}, nil
}

// Mint signs a token for the given identity. Used by tests and local tooling;
// production tokens come from the identity provider.
func (r *Resolver) Mint(id Identity, ttl time.Duration) (string, error) {
	if len(r.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now().UTC()
	claims := Claims{
		OrgID:   id.OrgID,
		OrgRole: string(id.OrgRole),
		Plan:    id.Plan,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.secret)
}

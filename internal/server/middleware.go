package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/hirewire/internal/identity"
	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
	obscontext "github.com/smallbiznis/hirewire/internal/observability/context"
)

// sessionCookieName matches the cookie the identity provider's frontend
// SDK sets alongside the Authorization header.
const sessionCookieName = "_session"

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie)
}

// resolveIdentity attaches the caller's identity to the request
// context when a token is present. A present but invalid token aborts
// rather than silently downgrading to anonymous.
func (s *Server) resolveIdentity(c *gin.Context) bool {
	token := bearerToken(c)
	if token == "" {
		return true
	}

	id, err := s.ids.Resolve(token)
	if err != nil {
		AbortWithError(c, ErrUnauthorized)
		return false
	}

	ctx := identity.WithIdentity(c.Request.Context(), id)
	ctx = obscontext.WithActor(ctx, "user", id.Subject)
	if id.HasOrg() {
		ctx = obscontext.WithOrgID(ctx, id.OrgID)
	}
	c.Request = c.Request.WithContext(ctx)
	return true
}

// AuthOptional resolves the caller's identity when a token is present.
// Anonymous requests pass through.
func (s *Server) AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.resolveIdentity(c) {
			return
		}
		c.Next()
	}
}

// AuthRequired is AuthOptional plus a hard authentication check.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.resolveIdentity(c) {
			return
		}
		if !identity.FromContext(c.Request.Context()).Authenticated() {
			AbortWithError(c, identity.ErrNotAuthenticated)
			return
		}
		c.Next()
	}
}

// OrgRequired rejects callers whose token carries no active
// organization.
func (s *Server) OrgRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identity.FromContext(c.Request.Context()).HasOrg() {
			AbortWithError(c, jobdomain.ErrNoActiveOrg)
			return
		}
		c.Next()
	}
}

// SubmitRateLimit throttles application submissions per applicant.
func (s *Server) SubmitRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.submitLimiter.Enabled() {
			c.Next()
			return
		}

		id := identity.FromContext(c.Request.Context())
		allowed, err := s.submitLimiter.Allow(c.Request.Context(), id.Subject)
		if err != nil {
			// Redis being down should not take applications with it.
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "applications.submit", "limiter_error")
			c.Next()
			return
		}
		if !allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "applications.submit", "throttled")
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), "applications.submit")
		c.Next()
	}
}

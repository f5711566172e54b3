package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/hirewire/internal/config"
)

func testResolver() *Resolver {
	return NewResolver(config.Config{AuthJWTSecret: "test-secret"})
}

func TestMintResolveRoundtrip(t *testing.T) {
	r := testResolver()

	token, err := r.Mint(Identity{
		Subject: "user_42",
		OrgID:   "org_acme",
		OrgRole: RoleAdmin,
		Plan:    "pro",
	}, time.Hour)
	require.NoError(t, err)

	id, err := r.Resolve(token)
	require.NoError(t, err)
	require.Equal(t, "user_42", id.Subject)
	require.Equal(t, "org_acme", id.OrgID)
	require.Equal(t, RoleAdmin, id.OrgRole)
	require.Equal(t, "pro", id.Plan)
	require.True(t, id.Authenticated())
	require.True(t, id.HasOrg())
	require.True(t, id.IsOrgAdmin())
}

func TestResolveRejectsGarbage(t *testing.T) {
	r := testResolver()

	_, err := r.Resolve("")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = r.Resolve("   ")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = r.Resolve("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveRejectsWrongSecret(t *testing.T) {
	token, err := testResolver().Mint(Identity{Subject: "user_42"}, time.Hour)
	require.NoError(t, err)

	other := NewResolver(config.Config{AuthJWTSecret: "different-secret"})
	_, err = other.Resolve(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	r := testResolver()
	token, err := r.Mint(Identity{Subject: "user_42"}, -time.Minute)
	require.NoError(t, err)

	_, err = r.Resolve(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveRequiresSecret(t *testing.T) {
	r := NewResolver(config.Config{})

	_, err := r.Mint(Identity{Subject: "user_42"}, time.Hour)
	require.ErrorIs(t, err, ErrNoSecret)

	_, err = r.Resolve("anything")
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestNormalizeRole(t *testing.T) {
	require.Equal(t, RoleAdmin, NormalizeRole("admin"))
	require.Equal(t, RoleAdmin, NormalizeRole("org:admin"))
	require.Equal(t, RoleMember, NormalizeRole(" Member "))
	require.Equal(t, Role(""), NormalizeRole("owner"))
	require.Equal(t, Role(""), NormalizeRole(""))
}

func TestAnonymousIdentity(t *testing.T) {
	var id Identity
	require.False(t, id.Authenticated())
	require.False(t, id.HasOrg())
	require.False(t, id.IsOrgMember())
	require.False(t, id.IsOrgAdmin())
}

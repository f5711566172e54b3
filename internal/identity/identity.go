// Package identity resolves the acting principal from the identity
// provider's signed session token. The provider owns sign-in, organization
// membership, roles and billing; this service only verifies the token
// signature and reads claims.
package identity

import (
	"errors"
	"strings"
)

// Role is an organization role claim value.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

var ErrNotAuthenticated = errors.New("Not authenticated")

// Identity is the strongly-typed per-request identity context. The zero
// value is an anonymous caller.
type Identity struct {
	Subject string
	OrgID   string
	OrgRole Role
	Plan    string
}

// Authenticated reports whether a verified subject is present.
func (id Identity) Authenticated() bool {
	return strings.TrimSpace(id.Subject) != ""
}

// HasOrg reports whether the identity is scoped to an organization.
func (id Identity) HasOrg() bool {
	return strings.TrimSpace(id.OrgID) != ""
}

// IsOrgMember reports whether the identity holds any org role.
func (id Identity) IsOrgMember() bool {
	return id.OrgRole == RoleAdmin || id.OrgRole == RoleMember
}

// IsOrgAdmin reports whether the identity holds the admin role.
func (id Identity) IsOrgAdmin() bool {
	return id.OrgRole == RoleAdmin
}

// NormalizeRole maps provider role claims ("org:admin", "admin") to a Role.
// Unknown values map to the empty Role.
func NormalizeRole(raw string) Role {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, "org:")
	switch value {
	case "admin":
		return RoleAdmin
	case "member":
		return RoleMember
	default:
		return Role("")
	}
}

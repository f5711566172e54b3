// Package authorization enforces role-based permissions for org-scoped
// operations. Roles come from the identity provider's token claims; the
// permission model itself lives here.
package authorization

import (
	"context"

	"github.com/smallbiznis/hirewire/internal/identity"
)

// Service answers whether an identity may perform an action on an
// object within its active organization.
type Service interface {
	Authorize(ctx context.Context, id identity.Identity, object string, action string) error
}

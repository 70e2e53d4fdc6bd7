package permission

import (
	"context"

	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// GrantRepository reads permission rows. The authorization core only
// ever reads grants; writes belong to administrative flows.
type GrantRepository interface {
	// FindGrantNames returns the permission names explicitly granted
	// to a user, as stored.
	FindGrantNames(ctx context.Context, userID kernel.UserID) ([]string, error)

	// FindCatalogNames returns every permission name defined in the
	// store, used to expand the owner super-grant.
	FindCatalogNames(ctx context.Context) ([]string, error)
}

// MembershipReader is the slice of the user store the resolver needs:
// the owner flag of a (user, tenant) membership.
type MembershipReader interface {
	// IsOwner reports whether the user is an owner of the tenant.
	// Absence of a membership row is (false, nil).
	IsOwner(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) (bool, error)
}

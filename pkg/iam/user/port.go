package user

import (
	"context"

	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// Repository resolves token subjects to user records.
type Repository interface {
	// FindByID returns the user for a subject, or nil when the subject
	// no longer exists.
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
}

// MembershipRepository reads tenant-membership rows.
type MembershipRepository interface {
	// FindMembership returns the membership row for (user, tenant), or
	// nil when none exists.
	FindMembership(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) (*TenantMembership, error)

	// IsOwner reports the owner flag; absence of a row is (false, nil).
	IsOwner(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) (bool, error)
}

package user

import (
	"context"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// TenantGuard confirms a user belongs to the tenant this process
// instance is bound to. The check is mandatory on every authenticated
// request, including read-only ones: a stolen cross-tenant token must
// not leak even metadata.
type TenantGuard struct {
	memberships MembershipRepository
	tenantID    kernel.TenantID
}

func NewTenantGuard(memberships MembershipRepository, tenantID kernel.TenantID) *TenantGuard {
	return &TenantGuard{memberships: memberships, tenantID: tenantID}
}

// TenantID returns the tenant this deployment serves.
func (g *TenantGuard) TenantID() kernel.TenantID {
	return g.tenantID
}

// VerifyMembership returns the membership row for the bound tenant.
// A missing row and a store failure both deny.
func (g *TenantGuard) VerifyMembership(ctx context.Context, userID kernel.UserID) (*TenantMembership, error) {
	membership, err := g.memberships.FindMembership(ctx, userID, g.tenantID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to verify tenant membership", errx.TypeInternal)
	}
	if membership == nil {
		return nil, ErrTenantMismatch()
	}
	return membership, nil
}

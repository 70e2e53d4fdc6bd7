package permission

import (
	"context"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// Resolver computes the effective permission set for a (user, tenant)
// pair. Owners receive the full catalog currently defined in the store;
// everyone else receives exactly their explicit grants. Store failures
// surface as errors, never as an empty-but-allowed set.
type Resolver struct {
	grants      GrantRepository
	memberships MembershipReader
}

func NewResolver(grants GrantRepository, memberships MembershipReader) *Resolver {
	return &Resolver{grants: grants, memberships: memberships}
}

// Effective returns the user's effective permissions within the tenant.
func (r *Resolver) Effective(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) (Set, error) {
	owner, err := r.memberships.IsOwner(ctx, userID, tenantID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to resolve tenant membership", errx.TypeInternal)
	}

	if owner {
		names, err := r.grants.FindCatalogNames(ctx)
		if err != nil {
			return nil, errx.Wrap(err, "failed to load permission catalog", errx.TypeInternal)
		}
		return ParseSet(names), nil
	}

	names, err := r.grants.FindGrantNames(ctx, userID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load permission grants", errx.TypeInternal)
	}
	return ParseSet(names), nil
}

// HasAny reports whether the user holds at least one of the required
// permissions within the tenant.
func (r *Resolver) HasAny(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID, required ...Permission) (bool, error) {
	effective, err := r.Effective(ctx, userID, tenantID)
	if err != nil {
		return false, err
	}
	return effective.HasAny(required...), nil
}

// HasAll reports whether the user holds every required permission
// within the tenant.
func (r *Resolver) HasAll(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID, required ...Permission) (bool, error) {
	effective, err := r.Effective(ctx, userID, tenantID)
	if err != nil {
		return false, err
	}
	return effective.HasAll(required...), nil
}

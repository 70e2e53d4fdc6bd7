package userinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/gsdb"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/user"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// PostgresUserRepository reads gs_user rows.
type PostgresUserRepository struct {
	store gsdb.Store
}

func NewPostgresUserRepository(store gsdb.Store) user.Repository {
	return &PostgresUserRepository{store: store}
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	var u user.User
	query := `SELECT user_id, username, first_name, last_name FROM gs_user WHERE user_id = $1`
	err := r.store.FetchOne(ctx, &u, query, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errx.Wrap(err, "failed to find user", errx.TypeInternal).
			WithDetail("user_id", id.String())
	}
	return &u, nil
}

// PostgresMembershipRepository reads gs_user_tenant rows.
type PostgresMembershipRepository struct {
	store gsdb.Store
}

func NewPostgresMembershipRepository(store gsdb.Store) user.MembershipRepository {
	return &PostgresMembershipRepository{store: store}
}

func (r *PostgresMembershipRepository) FindMembership(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) (*user.TenantMembership, error) {
	var m user.TenantMembership
	query := `SELECT user_id, tenant_id, is_owner FROM gs_user_tenant WHERE user_id = $1 AND tenant_id = $2`
	err := r.store.FetchOne(ctx, &m, query, userID.String(), tenantID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errx.Wrap(err, "failed to find tenant membership", errx.TypeInternal)
	}
	return &m, nil
}

func (r *PostgresMembershipRepository) IsOwner(ctx context.Context, userID kernel.UserID, tenantID kernel.TenantID) (bool, error) {
	membership, err := r.FindMembership(ctx, userID, tenantID)
	if err != nil {
		return false, err
	}
	if membership == nil {
		return false, nil
	}
	return membership.IsOwner, nil
}

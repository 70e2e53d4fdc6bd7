package permissioninfra

import (
	"context"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/gsdb"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/permission"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// PostgresGrantRepository reads gs_permission and gs_user_permission.
type PostgresGrantRepository struct {
	store gsdb.Store
}

func NewPostgresGrantRepository(store gsdb.Store) permission.GrantRepository {
	return &PostgresGrantRepository{store: store}
}

func (r *PostgresGrantRepository) FindGrantNames(ctx context.Context, userID kernel.UserID) ([]string, error) {
	var names []string
	query := `
		SELECT p.name FROM gs_user_permission up
		LEFT JOIN gs_permission p USING (permission_id)
		WHERE up.user_id = $1
		ORDER BY p.name ASC`
	if err := r.store.FetchAll(ctx, &names, query, userID.String()); err != nil {
		return nil, errx.Wrap(err, "failed to load user permission grants", errx.TypeInternal).
			WithDetail("user_id", userID.String())
	}
	return names, nil
}

func (r *PostgresGrantRepository) FindCatalogNames(ctx context.Context) ([]string, error) {
	var names []string
	query := `SELECT name FROM gs_permission ORDER BY name ASC`
	if err := r.store.FetchAll(ctx, &names, query); err != nil {
		return nil, errx.Wrap(err, "failed to load permission catalog", errx.TypeInternal)
	}
	return names, nil
}

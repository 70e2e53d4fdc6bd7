package tokeninfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/gsdb"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/token"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// PostgresRevocationStore persists issued-token records in gs_token.
// Rows are never deleted; only the revoked flag transitions false→true.
type PostgresRevocationStore struct {
	store gsdb.Store
}

func NewPostgresRevocationStore(store gsdb.Store) token.RevocationStore {
	return &PostgresRevocationStore{store: store}
}

func (r *PostgresRevocationStore) Record(ctx context.Context, rec token.Record) error {
	query := `
		INSERT INTO gs_token (jti, token_type, token_value, user_identity, username, revoked, expires_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)`

	_, err := r.store.Execute(ctx, query,
		rec.JTI, rec.TokenType, rec.TokenValue, rec.UserIdentity.String(), rec.Username, rec.ExpiresAt)
	if err != nil {
		return errx.Wrap(err, "failed to record issued token", errx.TypeInternal).
			WithDetail("jti", rec.JTI)
	}
	return nil
}

// IsRevoked fails closed: a missing record, a set revoked flag, and a
// store error all report the token as revoked.
func (r *PostgresRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	query := `SELECT revoked FROM gs_token WHERE jti = $1`
	err := r.store.FetchOne(ctx, &revoked, query, jti)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}
		return true, errx.Wrap(err, "failed to check token revocation", errx.TypeInternal)
	}
	return revoked, nil
}

func (r *PostgresRevocationStore) Revoke(ctx context.Context, jti string) error {
	query := `UPDATE gs_token SET revoked = true WHERE jti = $1`
	// An unrecorded jti leaves nothing to flip; IsRevoked already
	// treats it as revoked.
	_, err := r.store.Execute(ctx, query, jti)
	if err != nil {
		return errx.Wrap(err, "failed to revoke token", errx.TypeInternal).
			WithDetail("jti", jti)
	}
	return nil
}

func (r *PostgresRevocationStore) RevokeAllForUser(ctx context.Context, userID kernel.UserID) error {
	query := `UPDATE gs_token SET revoked = true WHERE user_identity = $1 AND revoked = false`
	if _, err := r.store.Execute(ctx, query, userID.String()); err != nil {
		return errx.Wrap(err, "failed to revoke user tokens", errx.TypeInternal).
			WithDetail("user_id", userID.String())
	}
	return nil
}

func (r *PostgresRevocationStore) FindByJTI(ctx context.Context, jti string) (*token.Record, error) {
	var rec token.Record
	query := `SELECT jti, token_type, token_value, user_identity, username, revoked, expires_at
		FROM gs_token WHERE jti = $1`
	err := r.store.FetchOne(ctx, &rec, query, jti)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errx.Wrap(err, "failed to find token record", errx.TypeInternal)
	}
	return &rec, nil
}

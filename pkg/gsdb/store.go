// Package gsdb wraps the relational store behind the three calls the
// rest of the codebase is allowed to make: FetchOne, FetchAll, Execute.
// Every call runs with the deployment's tenant id applied as the
// app.tenant_id session setting on its connection.
package gsdb

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// Store is the opaque data-store surface used by the authorization core.
type Store interface {
	// FetchOne scans a single row into dest. Returns sql.ErrNoRows
	// (wrapped) when no row matches.
	FetchOne(ctx context.Context, dest interface{}, query string, args ...interface{}) error

	// FetchAll scans all matching rows into the slice pointed to by dest.
	FetchAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error

	// Execute runs a statement and returns the number of affected rows.
	Execute(ctx context.Context, query string, args ...interface{}) (int64, error)
}

// PostgresStore implements Store on a sqlx connection pool.
type PostgresStore struct {
	db       *sqlx.DB
	tenantID kernel.TenantID
}

// NewPostgresStore binds a pool to a tenant.
func NewPostgresStore(db *sqlx.DB, tenantID kernel.TenantID) *PostgresStore {
	return &PostgresStore{db: db, tenantID: tenantID}
}

// withConn runs fn on a single pooled connection with app.tenant_id set,
// so row-level policies keyed on the setting see the bound tenant.
func (s *PostgresStore) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return errx.Wrap(err, "failed to acquire database connection", errx.TypeInternal)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT set_config('app.tenant_id', $1, false)`, s.tenantID.String()); err != nil {
		return errx.Wrap(err, "failed to set tenant session variable", errx.TypeInternal)
	}
	return fn(conn)
}

func (s *PostgresStore) FetchOne(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return s.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, dest, query, args...)
	})
}

func (s *PostgresStore) FetchAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return s.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, dest, query, args...)
	})
}

func (s *PostgresStore) Execute(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var affected int64
	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		result, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	return affected, err
}

package token

import (
	"context"

	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// RevocationStore persists one record per issued token and answers the
// blocklist check consulted on every protected request.
type RevocationStore interface {
	// Record inserts a new, non-revoked record for a just-issued token.
	Record(ctx context.Context, rec Record) error

	// IsRevoked reports whether the token must be rejected: true when
	// the record's revoked flag is set, and true when no record exists
	// at all (an unrecorded token is invalid).
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Revoke flips a single record's revoked flag.
	Revoke(ctx context.Context, jti string) error

	// RevokeAllForUser flips every record owned by the user.
	RevokeAllForUser(ctx context.Context, userID kernel.UserID) error

	// FindByJTI returns the record for a jti, or nil when absent.
	FindByJTI(ctx context.Context, jti string) (*Record, error)
}

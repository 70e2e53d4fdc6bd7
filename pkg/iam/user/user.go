package user

import (
	"net/http"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// User is the profile the authorization core reads. Administration of
// these rows happens out of scope; the core never writes them.
type User struct {
	ID        kernel.UserID `db:"user_id" json:"user_id"`
	Username  string        `db:"username" json:"username"`
	FirstName string        `db:"first_name" json:"first_name"`
	LastName  string        `db:"last_name" json:"last_name"`
}

// DisplayName returns the name recorded alongside issued tokens.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.ID.String()
}

// TenantMembership links a user to a tenant. The owner flag is a
// super-grant: owners hold every permission currently defined.
type TenantMembership struct {
	UserID   kernel.UserID   `db:"user_id" json:"user_id"`
	TenantID kernel.TenantID `db:"tenant_id" json:"tenant_id"`
	IsOwner  bool            `db:"is_owner" json:"is_owner"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

var (
	// A valid token whose subject no longer exists authenticates nobody.
	CodeUnknownSubject = ErrRegistry.Register("UNKNOWN_SUBJECT", errx.TypeAuthentication, http.StatusUnauthorized, "Unknown token subject")

	// TenantMismatch is the only authentication-stage failure that
	// surfaces as 403: identity was established, access was not.
	CodeTenantMismatch = ErrRegistry.Register("TENANT_MISMATCH", errx.TypeAuthorization, http.StatusForbidden, "You do not have access to this tenant")
)

func ErrUnknownSubject() *errx.Error {
	return ErrRegistry.New(CodeUnknownSubject)
}

func ErrTenantMismatch() *errx.Error {
	return ErrRegistry.New(CodeTenantMismatch)
}

package token

import (
	"net/http"
	"time"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// ============================================================================
// Token Types
// ============================================================================

// Type distinguishes the two session-token variants.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Valid reports whether t is a known token type.
func (t Type) Valid() bool {
	return t == TypeAccess || t == TypeRefresh
}

// Claims is the decoded, signature-verified content of a session token.
// Revocation is tracked externally; Claims never carries a revoked flag.
type Claims struct {
	Subject   kernel.UserID `json:"sub"`
	JTI       string        `json:"jti"`
	Type      Type          `json:"type"`
	IssuedAt  time.Time     `json:"iat"`
	ExpiresAt time.Time     `json:"exp"`
}

// ExpiresIn returns the remaining lifetime in whole seconds.
func (c *Claims) ExpiresIn(now time.Time) int64 {
	remaining := c.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int64(remaining.Seconds())
}

// Record is one row of the revocation list: every issued token is
// recorded at issuance and honored only while its row stays unrevoked.
type Record struct {
	JTI          string        `db:"jti" json:"jti"`
	TokenType    Type          `db:"token_type" json:"token_type"`
	TokenValue   string        `db:"token_value" json:"token_value"`
	UserIdentity kernel.UserID `db:"user_identity" json:"user_identity"`
	Username     string        `db:"username" json:"username"`
	Revoked      bool          `db:"revoked" json:"revoked"`
	ExpiresAt    time.Time     `db:"expires_at" json:"expires_at"`
}

// IsExpired checks if the recorded token has passed its natural expiry.
func (r *Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// IsActive checks if the recorded token is still honorable.
func (r *Record) IsActive() bool {
	return !r.Revoked && !r.IsExpired()
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("TOKEN")

var (
	CodeMalformedToken   = ErrRegistry.Register("MALFORMED_TOKEN", errx.TypeAuthentication, http.StatusUnauthorized, "Unable to parse authentication token")
	CodeExpiredToken     = ErrRegistry.Register("EXPIRED_TOKEN", errx.TypeAuthentication, http.StatusUnauthorized, "Token is expired")
	CodeRevokedToken     = ErrRegistry.Register("REVOKED_TOKEN", errx.TypeAuthentication, http.StatusUnauthorized, "Token has been revoked")
	CodeGenerationFailed = ErrRegistry.Register("GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token generation failed")
)

func ErrMalformedToken() *errx.Error {
	return ErrRegistry.New(CodeMalformedToken)
}

func ErrExpiredToken() *errx.Error {
	return ErrRegistry.New(CodeExpiredToken)
}

func ErrRevokedToken() *errx.Error {
	return ErrRegistry.New(CodeRevokedToken)
}

func ErrGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeGenerationFailed)
}

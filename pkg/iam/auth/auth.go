package auth

import (
	"net/http"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/token"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// ============================================================================
// Verified Subject
// ============================================================================

// VerifiedSubject is what an Authenticator establishes: who signed the
// credential and who it asserts. It says nothing about revocation,
// account existence or tenant membership; those checks follow.
type VerifiedSubject struct {
	Subject   kernel.UserID
	JTI       string
	TokenType token.Type
	Federated bool
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeMissingCredential = ErrRegistry.Register("MISSING_CREDENTIAL", errx.TypeAuthentication, http.StatusUnauthorized, "Authorization credential is expected")

	// Key-fetch failures fail closed: identity cannot be established.
	CodeKeyFetchFailed = ErrRegistry.Register("KEY_FETCH_FAILED", errx.TypeAuthentication, http.StatusUnauthorized, "Unable to verify token signing key")

	CodeInsufficientPermission = ErrRegistry.Register("INSUFFICIENT_PERMISSION", errx.TypeAuthorization, http.StatusForbidden, "Forbidden")

	CodeRateLimited = ErrRegistry.Register("RATE_LIMITED", errx.TypeValidation, http.StatusTooManyRequests, "Too many attempts, slow down")
)

func ErrMissingCredential() *errx.Error {
	return ErrRegistry.New(CodeMissingCredential)
}

func ErrKeyFetchFailed() *errx.Error {
	return ErrRegistry.New(CodeKeyFetchFailed)
}

func ErrInsufficientPermission() *errx.Error {
	return ErrRegistry.New(CodeInsufficientPermission)
}

func ErrRateLimited() *errx.Error {
	return ErrRegistry.New(CodeRateLimited)
}

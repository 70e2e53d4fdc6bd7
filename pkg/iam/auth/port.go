package auth

import (
	"context"
	"crypto/rsa"
)

// Authenticator verifies a credential's signature and structure and
// returns the subject it asserts. Implementations cover the two trust
// paths: locally signed session tokens and federated provider tokens.
// A credential valid under one path is not automatically valid under
// the other.
type Authenticator interface {
	Verify(ctx context.Context, credential string) (*VerifiedSubject, error)
}

// KeyProvider supplies the identity provider's public key for a key id,
// typically from a cached JWKS document.
type KeyProvider interface {
	PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// AuditLogger records every authentication and authorization outcome.
// The denial log is the only forensic trail for access-control
// violations; it is mandatory, not instrumentation.
type AuditLogger interface {
	// LogDenied records a rejected request with everything forensics
	// needs: identity if known, source address, URL and request body.
	LogDenied(ctx context.Context, userID string, clientIP string, url string, body string, httpStatus int, reason string)

	// LogAuthorized records a successfully authenticated request.
	LogAuthorized(ctx context.Context, userID string, clientIP string, url string)
}

// ProviderProfile is the slice of the identity provider's userinfo
// response the auth surface uses.
type ProviderProfile struct {
	Subject    string `json:"sub"`
	Username   string `json:"nickname"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// ProfileFetcher consults the identity provider's userinfo endpoint
// with an already-verified bearer token.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, bearerToken string) (*ProviderProfile, error)
}

// RateLimiter bounds attempts per key within a window.
type RateLimiter interface {
	// Allow reports whether one more attempt under key is permitted.
	Allow(ctx context.Context, key string) (bool, error)
}

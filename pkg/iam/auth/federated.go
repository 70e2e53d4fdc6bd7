package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/williamhuntjr/grubstack-api/pkg/iam/token"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// FederatedAuthenticator verifies tokens issued by the external
// identity provider against its published key set. Federation only
// establishes who the caller is; revocation, account and tenant checks
// still run against the local store afterwards.
type FederatedAuthenticator struct {
	keys     KeyProvider
	issuer   string
	audience string
}

func NewFederatedAuthenticator(keys KeyProvider, issuer, audience string) *FederatedAuthenticator {
	return &FederatedAuthenticator{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
	}
}

func (a *FederatedAuthenticator) Verify(ctx context.Context, credential string) (*VerifiedSubject, error) {
	parsed, err := jwt.ParseWithClaims(credential, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token has no key id")
			}
			key, err := a.keys.PublicKey(ctx, kid)
			if err != nil {
				return nil, err
			}
			return key, nil
		},
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(a.audience),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, token.ErrRegistry.NewWithCause(token.CodeExpiredToken, err)
		case isKeyFetchError(err):
			return nil, ErrRegistry.NewWithCause(CodeKeyFetchFailed, err)
		default:
			return nil, token.ErrRegistry.NewWithCause(token.CodeMalformedToken, err)
		}
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, token.ErrMalformedToken()
	}

	return &VerifiedSubject{
		Subject:   kernel.NewUserID(claims.Subject),
		JTI:       claims.ID,
		TokenType: token.TypeAccess,
		Federated: true,
	}, nil
}

// isKeyFetchError distinguishes "could not obtain the provider key"
// from "signature did not verify" so the former logs as an upstream
// failure rather than a forged token.
func isKeyFetchError(err error) bool {
	var fetchErr *KeyFetchError
	return errors.As(err, &fetchErr)
}

// KeyFetchError marks failures to obtain a provider public key.
// KeyProvider implementations wrap their transport errors in it.
type KeyFetchError struct {
	Err error
}

func (e *KeyFetchError) Error() string {
	return fmt.Sprintf("key fetch failed: %v", e.Err)
}

func (e *KeyFetchError) Unwrap() error {
	return e.Err
}

package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/auth"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/token"
)

const (
	providerIssuer   = "https://tenant.auth0.test/"
	providerAudience = "grubstack-api"
)

// staticKeys serves one key for one kid.
type staticKeys struct {
	kid string
	key *rsa.PublicKey
	err error
}

func (s *staticKeys) PublicKey(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if s.err != nil {
		return nil, s.err
	}
	if kid != s.kid {
		return nil, errors.New("unable to find appropriate key")
	}
	return s.key, nil
}

func signProviderToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	encoded, err := tok.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return encoded
}

func providerClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "auth0|alice",
		Issuer:    providerIssuer,
		Audience:  []string{providerAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestFederated_ValidToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	a := auth.NewFederatedAuthenticator(&staticKeys{kid: "kid-1", key: &key.PublicKey}, providerIssuer, providerAudience)

	verified, err := a.Verify(context.Background(), signProviderToken(t, key, "kid-1", providerClaims()))
	if err != nil {
		t.Fatal(err)
	}
	if verified.Subject.String() != "auth0|alice" {
		t.Fatalf("unexpected subject %q", verified.Subject)
	}
	if !verified.Federated {
		t.Fatal("expected a federated subject")
	}
	if verified.TokenType != token.TypeAccess {
		t.Fatal("federated tokens act as access tokens")
	}
}

func TestFederated_MissingKid(t *testing.T) {
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	a := auth.NewFederatedAuthenticator(&staticKeys{kid: "kid-1", key: &key.PublicKey}, providerIssuer, providerAudience)

	if _, err := a.Verify(context.Background(), signProviderToken(t, key, "", providerClaims())); err == nil {
		t.Fatal("a token without a kid must not verify")
	}
}

func TestFederated_WrongIssuer(t *testing.T) {
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	a := auth.NewFederatedAuthenticator(&staticKeys{kid: "kid-1", key: &key.PublicKey}, providerIssuer, providerAudience)

	claims := providerClaims()
	claims.Issuer = "https://somewhere-else.test/"
	if _, err := a.Verify(context.Background(), signProviderToken(t, key, "kid-1", claims)); err == nil {
		t.Fatal("a token from another issuer must not verify")
	}
}

func TestFederated_Expired(t *testing.T) {
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	a := auth.NewFederatedAuthenticator(&staticKeys{kid: "kid-1", key: &key.PublicKey}, providerIssuer, providerAudience)

	claims := providerClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err := a.Verify(context.Background(), signProviderToken(t, key, "kid-1", claims))
	if !errx.HasCode(err, token.CodeExpiredToken) {
		t.Fatalf("expected EXPIRED_TOKEN, got %v", err)
	}
}

func TestFederated_MissingExpiry(t *testing.T) {
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	a := auth.NewFederatedAuthenticator(&staticKeys{kid: "kid-1", key: &key.PublicKey}, providerIssuer, providerAudience)

	claims := providerClaims()
	claims.ExpiresAt = nil
	_, err := a.Verify(context.Background(), signProviderToken(t, key, "kid-1", claims))
	if !errx.HasCode(err, token.CodeMalformedToken) {
		t.Fatalf("a correctly signed token without an expiry must not verify, got %v", err)
	}
}

func TestFederated_KeyFetchFailure(t *testing.T) {
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	a := auth.NewFederatedAuthenticator(
		&staticKeys{err: &auth.KeyFetchError{Err: errors.New("provider unreachable")}},
		providerIssuer, providerAudience,
	)

	_, err := a.Verify(context.Background(), signProviderToken(t, key, "kid-1", providerClaims()))
	if !errx.HasCode(err, auth.CodeKeyFetchFailed) {
		t.Fatalf("expected KEY_FETCH_FAILED, got %v", err)
	}
}

func TestFederated_WrongKey(t *testing.T) {
	signing, _ := rsa.GenerateKey(rand.Reader, 2048)
	other, _ := rsa.GenerateKey(rand.Reader, 2048)
	a := auth.NewFederatedAuthenticator(&staticKeys{kid: "kid-1", key: &other.PublicKey}, providerIssuer, providerAudience)

	if _, err := a.Verify(context.Background(), signProviderToken(t, signing, "kid-1", providerClaims())); err == nil {
		t.Fatal("a token signed with a different key must not verify")
	}
}

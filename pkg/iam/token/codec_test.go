package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/token"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

func newCodec() *token.Codec {
	return token.NewCodec("test-signing-secret", "grubstack-api", "grubstack")
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newCodec()
	subject := kernel.NewUserID("auth0|user-1")

	encoded, claims, err := c.Issue(subject, token.TypeAccess, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if encoded == "" {
		t.Fatal("expected a non-empty encoded token")
	}
	if claims.JTI == "" {
		t.Fatal("expected a generated jti")
	}

	decoded, err := c.Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Subject != subject {
		t.Fatalf("subject mismatch: got %q", decoded.Subject)
	}
	if decoded.JTI != claims.JTI {
		t.Fatalf("jti mismatch: issued %q, decoded %q", claims.JTI, decoded.JTI)
	}
	if decoded.Type != token.TypeAccess {
		t.Fatalf("expected access type, got %q", decoded.Type)
	}
}

func TestCodec_FreshJTIPerIssue(t *testing.T) {
	c := newCodec()
	subject := kernel.NewUserID("user-1")

	_, first, err := c.Issue(subject, token.TypeAccess, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := c.Issue(subject, token.TypeAccess, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if first.JTI == second.JTI {
		t.Fatal("two issued tokens shared a jti")
	}
}

func TestCodec_RefreshType(t *testing.T) {
	c := newCodec()

	encoded, _, err := c.Issue(kernel.NewUserID("user-1"), token.TypeRefresh, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := c.Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Type != token.TypeRefresh {
		t.Fatalf("expected refresh type, got %q", decoded.Type)
	}
}

func TestCodec_UnknownTypeRejected(t *testing.T) {
	c := newCodec()

	_, _, err := c.Issue(kernel.NewUserID("user-1"), token.Type("session"), time.Hour)
	if err == nil {
		t.Fatal("expected an error for an unknown token type")
	}
}

func TestCodec_ExpiredToken(t *testing.T) {
	c := newCodec()

	encoded, _, err := c.Issue(kernel.NewUserID("user-1"), token.TypeAccess, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Decode(encoded)
	if err == nil {
		t.Fatal("expected expired token to fail decode")
	}
	if !errx.HasCode(err, token.CodeExpiredToken) {
		t.Fatalf("expected EXPIRED_TOKEN, got %v", err)
	}
}

func TestCodec_WrongKeyRejected(t *testing.T) {
	issuing := token.NewCodec("key-one", "grubstack-api", "grubstack")
	verifying := token.NewCodec("key-two", "grubstack-api", "grubstack")

	encoded, _, err := issuing.Issue(kernel.NewUserID("user-1"), token.TypeAccess, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	_, err = verifying.Decode(encoded)
	if err == nil {
		t.Fatal("expected a signature failure across keys")
	}
	if !errx.HasCode(err, token.CodeMalformedToken) {
		t.Fatalf("expected MALFORMED_TOKEN, got %v", err)
	}
}

func TestCodec_WrongAudienceRejected(t *testing.T) {
	issuing := token.NewCodec("secret", "grubstack-api", "other-service")
	verifying := newCodec()

	encoded, _, err := issuing.Issue(kernel.NewUserID("user-1"), token.TypeAccess, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifying.Decode(encoded); err == nil {
		t.Fatal("expected audience mismatch to fail decode")
	}
}

func TestCodec_MissingTimestampsRejected(t *testing.T) {
	c := newCodec()

	// Hand-signed with the codec secret but without iat/exp. Decode
	// must report a malformed token, not trust or crash on it.
	for name, claims := range map[string]jwt.MapClaims{
		"no exp": {
			"type": "access", "jti": uuid.NewString(), "sub": "user-1",
			"iss": "grubstack-api", "aud": "grubstack",
			"iat": time.Now().Unix(),
		},
		"no iat": {
			"type": "access", "jti": uuid.NewString(), "sub": "user-1",
			"iss": "grubstack-api", "aud": "grubstack",
			"exp": time.Now().Add(time.Hour).Unix(),
		},
	} {
		encoded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-secret"))
		if err != nil {
			t.Fatal(err)
		}
		_, err = c.Decode(encoded)
		if !errx.HasCode(err, token.CodeMalformedToken) {
			t.Fatalf("%s: expected MALFORMED_TOKEN, got %v", name, err)
		}
	}
}

func TestCodec_GarbageRejected(t *testing.T) {
	c := newCodec()
	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := c.Decode(input); err == nil {
			t.Fatalf("expected decode of %q to fail", input)
		}
	}
}

func TestClaims_ExpiresIn(t *testing.T) {
	now := time.Now()
	claims := &token.Claims{ExpiresAt: now.Add(90 * time.Second)}
	if got := claims.ExpiresIn(now); got != 90 {
		t.Fatalf("expected 90 seconds remaining, got %d", got)
	}

	past := &token.Claims{ExpiresAt: now.Add(-time.Minute)}
	if got := past.ExpiresIn(now); got != 0 {
		t.Fatalf("expected 0 for an expired token, got %d", got)
	}
}

func TestRecord_IsActive(t *testing.T) {
	live := &token.Record{ExpiresAt: time.Now().Add(time.Hour)}
	if !live.IsActive() {
		t.Fatal("unrevoked unexpired record should be active")
	}

	revoked := &token.Record{Revoked: true, ExpiresAt: time.Now().Add(time.Hour)}
	if revoked.IsActive() {
		t.Fatal("revoked record should not be active")
	}

	expired := &token.Record{ExpiresAt: time.Now().Add(-time.Hour)}
	if expired.IsActive() {
		t.Fatal("expired record should not be active")
	}
}

package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// Codec signs and verifies locally issued session tokens. It never
// consults the revocation list; callers that need the blocklist check
// do that as a separate, explicit step so "cryptographically invalid"
// stays distinguishable from "administratively revoked".
type Codec struct {
	secret   []byte
	issuer   string
	audience string
}

// NewCodec creates a codec for the service signing key.
func NewCodec(secret, issuer, audience string) *Codec {
	if issuer == "" {
		issuer = "grubstack-api"
	}
	if audience == "" {
		audience = "grubstack"
	}
	return &Codec{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

// sessionClaims is the wire shape of a session token.
type sessionClaims struct {
	TokenType Type `json:"type"`
	jwt.RegisteredClaims
}

// Issue produces a signed token embedding the subject, a fresh jti and
// a now+ttl expiry. No side effects; recording the token is the
// caller's responsibility.
func (c *Codec) Issue(subject kernel.UserID, typ Type, ttl time.Duration) (string, *Claims, error) {
	if !typ.Valid() {
		return "", nil, ErrGenerationFailed().WithDetail("reason", fmt.Sprintf("unknown token type %q", typ))
	}

	now := time.Now()
	claims := sessionClaims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject.String(),
			Issuer:    c.issuer,
			Audience:  []string{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	encoded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, ErrRegistry.NewWithCause(CodeGenerationFailed, err)
	}

	return encoded, &Claims{
		Subject:   subject,
		JTI:       claims.ID,
		Type:      typ,
		IssuedAt:  now,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Decode verifies signature, structure, issuer, audience and expiry.
func (c *Codec) Decode(encoded string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(encoded, &sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrRegistry.NewWithCause(CodeExpiredToken, err)
		}
		return nil, ErrRegistry.NewWithCause(CodeMalformedToken, err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformedToken()
	}
	if !claims.TokenType.Valid() || claims.ID == "" || claims.Subject == "" ||
		claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrMalformedToken().WithDetail("reason", "missing required claims")
	}

	return &Claims{
		Subject:   kernel.NewUserID(claims.Subject),
		JTI:       claims.ID,
		Type:      claims.TokenType,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

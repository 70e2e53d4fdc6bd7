package authsrv

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/williamhuntjr/grubstack-api/pkg/envelope"
	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/iam"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/auth"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/token"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/user"
	"github.com/williamhuntjr/grubstack-api/pkg/logx"
)

// sessionPayload is the wire shape shared by login, refresh and whoami.
type sessionPayload struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	AccessToken           string    `json:"access_token"`
	AccessTokenExpiration time.Time `json:"access_token_expiration"`
	AccessTokenExpiresIn  int64     `json:"access_token_expires_in"`
	AccessTokenJTI        string    `json:"access_token_jti"`

	RefreshToken           string    `json:"refresh_token"`
	RefreshTokenExpiration time.Time `json:"refresh_token_expiration"`
	RefreshTokenExpiresIn  int64     `json:"refresh_token_expires_in"`
	RefreshTokenJTI        string    `json:"refresh_token_jti"`

	Permissions []string `json:"permissions"`
	TenantID    string   `json:"tenant_id"`
}

// deny logs the forensic trail and writes the uniform error envelope.
func (s *AuthService) deny(c *fiber.Ctx, err error, userID string) error {
	status := fiber.StatusUnauthorized
	var e *errx.Error
	if errx.As(err, &e) {
		status = e.HTTPStatus
	}
	s.audit.LogDenied(c.Context(), userID, c.IP(), c.OriginalURL(), string(c.Body()), status, err.Error())
	return envelope.FromError(c, err)
}

// Login exchanges a verified identity-provider token for a locally
// issued access + refresh pair. Credential verification itself happens
// upstream at the provider; login establishes the local session.
func (s *AuthService) Login(c *fiber.Ctx) error {
	if !s.allowAttempt(c, "login") {
		return s.deny(c, auth.ErrRateLimited(), "")
	}

	credential := bearerFromRequest(c, "", "id_token")
	if credential == "" {
		return s.deny(c, auth.ErrMissingCredential(), "")
	}
	if s.federated == nil {
		return s.deny(c, auth.ErrKeyFetchFailed().WithDetail("reason", "no identity provider configured"), "")
	}

	verified, err := s.federated.Verify(c.Context(), credential)
	if err != nil {
		return s.deny(c, err, "")
	}

	account, err := s.users.FindByID(c.Context(), verified.Subject)
	if err != nil || account == nil {
		return s.deny(c, user.ErrUnknownSubject(), verified.Subject.String())
	}

	if _, err := s.guard.VerifyMembership(c.Context(), account.ID); err != nil {
		return s.deny(c, err, account.ID.String())
	}

	accessEncoded, accessClaims, err := s.issueAndRecord(c.Context(), account, token.TypeAccess, s.accessTTL)
	if err != nil {
		return envelope.FromError(c, err)
	}
	refreshEncoded, refreshClaims, err := s.issueAndRecord(c.Context(), account, token.TypeRefresh, s.refreshTTL)
	if err != nil {
		return envelope.FromError(c, err)
	}

	effective, err := s.resolver.Effective(c.Context(), account.ID, s.guard.TenantID())
	if err != nil {
		return envelope.FromError(c, err)
	}

	setTokenCookie(c, "access_token", accessEncoded, accessClaims.ExpiresAt)
	setTokenCookie(c, refreshTokenCookie, refreshEncoded, refreshClaims.ExpiresAt)
	s.audit.LogAuthorized(c.Context(), account.ID.String(), c.IP(), c.OriginalURL())

	now := time.Now()
	return envelope.Success(c, sessionPayload{
		Username:               account.Username,
		FirstName:              account.FirstName,
		LastName:               account.LastName,
		AccessToken:            accessEncoded,
		AccessTokenExpiration:  accessClaims.ExpiresAt,
		AccessTokenExpiresIn:   accessClaims.ExpiresIn(now),
		AccessTokenJTI:         accessClaims.JTI,
		RefreshToken:           refreshEncoded,
		RefreshTokenExpiration: refreshClaims.ExpiresAt,
		RefreshTokenExpiresIn:  refreshClaims.ExpiresIn(now),
		RefreshTokenJTI:        refreshClaims.JTI,
		Permissions:            effective.Names(),
		TenantID:               s.guard.TenantID().String(),
	})
}

// Refresh mints a new access token for a valid, non-revoked refresh
// token. The refresh record itself stays untouched; it remains live
// until logout or natural expiry.
func (s *AuthService) Refresh(c *fiber.Ctx) error {
	if !s.allowAttempt(c, "refresh") {
		return s.deny(c, auth.ErrRateLimited(), "")
	}

	credential := bearerFromRequest(c, refreshTokenCookie, "refresh_token")
	if credential == "" {
		return s.deny(c, auth.ErrMissingCredential(), "")
	}

	claims, err := s.codec.Decode(credential)
	if err != nil {
		return s.deny(c, err, "")
	}
	if claims.Type != token.TypeRefresh {
		return s.deny(c, token.ErrMalformedToken().WithDetail("reason", "access token presented for refresh"), claims.Subject.String())
	}

	revoked, err := s.revocations.IsRevoked(c.Context(), claims.JTI)
	if err != nil || revoked {
		return s.deny(c, token.ErrRevokedToken(), claims.Subject.String())
	}

	account, err := s.users.FindByID(c.Context(), claims.Subject)
	if err != nil || account == nil {
		return s.deny(c, user.ErrUnknownSubject(), claims.Subject.String())
	}

	if _, err := s.guard.VerifyMembership(c.Context(), account.ID); err != nil {
		return s.deny(c, err, account.ID.String())
	}

	accessEncoded, accessClaims, err := s.issueAndRecord(c.Context(), account, token.TypeAccess, s.accessTTL)
	if err != nil {
		return envelope.FromError(c, err)
	}

	setTokenCookie(c, "access_token", accessEncoded, accessClaims.ExpiresAt)
	s.audit.LogAuthorized(c.Context(), account.ID.String(), c.IP(), c.OriginalURL())

	now := time.Now()
	return envelope.Success(c, sessionPayload{
		Username:               account.Username,
		FirstName:              account.FirstName,
		LastName:               account.LastName,
		AccessToken:            accessEncoded,
		AccessTokenExpiration:  accessClaims.ExpiresAt,
		AccessTokenExpiresIn:   accessClaims.ExpiresIn(now),
		AccessTokenJTI:         accessClaims.JTI,
		RefreshToken:           credential,
		RefreshTokenExpiration: claims.ExpiresAt,
		RefreshTokenExpiresIn:  claims.ExpiresIn(now),
		RefreshTokenJTI:        claims.JTI,
		TenantID:               s.guard.TenantID().String(),
	})
}

// Logout revokes every token the subject holds and clears the cookie
// carriers. A stolen, still-valid token must not survive logout, so
// the server-side revoked flag flips as well.
func (s *AuthService) Logout(c *fiber.Ctx) error {
	authCtx, ok := auth.FromContext(c)
	if !ok || authCtx.IsService {
		return envelope.FromError(c, iam.ErrAccessDenied())
	}

	if err := s.revocations.RevokeAllForUser(c.Context(), authCtx.UserID); err != nil {
		return envelope.FromError(c, err)
	}

	clearTokenCookie(c, "access_token")
	clearTokenCookie(c, refreshTokenCookie)
	return envelope.Message(c, "Logged out successfully.")
}

// Whoami returns the resolved identity, tenant and full effective
// permission set, so clients never re-derive permissions themselves.
func (s *AuthService) Whoami(c *fiber.Ctx) error {
	authCtx, ok := auth.FromContext(c)
	if !ok || authCtx.IsService {
		return envelope.FromError(c, iam.ErrAccessDenied())
	}

	effective, err := s.resolver.Effective(c.Context(), authCtx.UserID, authCtx.TenantID)
	if err != nil {
		return envelope.FromError(c, err)
	}

	payload := sessionPayload{
		Username:    authCtx.Username,
		FirstName:   authCtx.FirstName,
		LastName:    authCtx.LastName,
		Permissions: effective.Names(),
		TenantID:    authCtx.TenantID.String(),
	}

	now := time.Now()

	// Fill access-token metadata from the presented token's record.
	if authCtx.TokenJTI != "" {
		if rec, err := s.revocations.FindByJTI(c.Context(), authCtx.TokenJTI); err == nil && rec != nil {
			payload.AccessToken = rec.TokenValue
			payload.AccessTokenExpiration = rec.ExpiresAt
			payload.AccessTokenExpiresIn = expiresIn(rec.ExpiresAt, now)
			payload.AccessTokenJTI = rec.JTI
		}
	}

	// Refresh metadata comes from the cookie carrier when present.
	if cookie := c.Cookies(refreshTokenCookie); cookie != "" {
		if claims, err := s.codec.Decode(cookie); err == nil && claims.Type == token.TypeRefresh {
			payload.RefreshToken = cookie
			payload.RefreshTokenExpiration = claims.ExpiresAt
			payload.RefreshTokenExpiresIn = claims.ExpiresIn(now)
			payload.RefreshTokenJTI = claims.JTI
		}
	}

	// Federated callers get their profile from the provider.
	if authCtx.Federated && s.profiles != nil {
		if raw := bearerFromRequest(c, "access_token", "access_token"); raw != "" {
			if profile, err := s.profiles.FetchProfile(c.Context(), raw); err == nil {
				if profile.Username != "" {
					payload.Username = profile.Username
				}
				if profile.GivenName != "" {
					payload.FirstName = profile.GivenName
				}
				if profile.FamilyName != "" {
					payload.LastName = profile.FamilyName
				}
			} else {
				logx.WithError(err).Warn("failed to fetch provider profile")
			}
		}
	}

	return envelope.Success(c, payload)
}

// VerifyTenant is a lightweight membership check other services use to
// confirm a bearer token's owner belongs to this tenant. The middleware
// has already done the work; no profile data is exposed.
func (s *AuthService) VerifyTenant(c *fiber.Ctx) error {
	if _, ok := auth.FromContext(c); !ok {
		return envelope.FromError(c, iam.ErrUnauthorized())
	}
	return envelope.Message(c, "Success.")
}

func expiresIn(expiresAt, now time.Time) int64 {
	remaining := expiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int64(remaining.Seconds())
}

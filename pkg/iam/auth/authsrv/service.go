// Package authsrv exposes the auth endpoints: login, refresh, logout,
// whoami and verify_tenant. Login and refresh are the only operations
// that mint tokens; both record every issued token before returning it.
package authsrv

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/williamhuntjr/grubstack-api/pkg/iam/auth"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/permission"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/token"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/user"
	"github.com/williamhuntjr/grubstack-api/pkg/logx"
)

const refreshTokenCookie = "refresh_token"

// AuthService drives the token lifecycle.
type AuthService struct {
	codec       *token.Codec
	accessTTL   time.Duration
	refreshTTL  time.Duration
	revocations token.RevocationStore
	users       user.Repository
	guard       *user.TenantGuard
	resolver    *permission.Resolver
	federated   auth.Authenticator
	profiles    auth.ProfileFetcher
	limiter     auth.RateLimiter
	audit       auth.AuditLogger
}

func NewAuthService(
	codec *token.Codec,
	accessTTL, refreshTTL time.Duration,
	revocations token.RevocationStore,
	users user.Repository,
	guard *user.TenantGuard,
	resolver *permission.Resolver,
	federated auth.Authenticator,
	profiles auth.ProfileFetcher,
	limiter auth.RateLimiter,
	audit auth.AuditLogger,
) *AuthService {
	if limiter == nil {
		limiter = allowAll{}
	}
	return &AuthService{
		codec:       codec,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		revocations: revocations,
		users:       users,
		guard:       guard,
		resolver:    resolver,
		federated:   federated,
		profiles:    profiles,
		limiter:     limiter,
		audit:       audit,
	}
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) (bool, error) { return true, nil }

// RegisterRoutes mounts the auth surface. Logout, whoami and
// verify_tenant require an authenticated identity; login and refresh
// authenticate by the credential they carry.
func (s *AuthService) RegisterRoutes(app *fiber.App, mw *auth.Middleware) {
	grp := app.Group("/auth")
	grp.Post("/login", s.Login)
	grp.Post("/refresh", s.Refresh)
	grp.Post("/logout", mw.Authenticate(), s.Logout)
	grp.Get("/whoami", mw.Authenticate(), s.Whoami)
	grp.Get("/verify_tenant", mw.Authenticate(), s.VerifyTenant)
}

// issueAndRecord mints one token and persists its revocation record.
// A token that cannot be recorded is never returned: an unrecorded
// token would be unrevocable and unauditable.
func (s *AuthService) issueAndRecord(ctx context.Context, account *user.User, typ token.Type, ttl time.Duration) (string, *token.Claims, error) {
	encoded, claims, err := s.codec.Issue(account.ID, typ, ttl)
	if err != nil {
		return "", nil, err
	}
	rec := token.Record{
		JTI:          claims.JTI,
		TokenType:    typ,
		TokenValue:   encoded,
		UserIdentity: account.ID,
		Username:     account.DisplayName(),
		ExpiresAt:    claims.ExpiresAt,
	}
	if err := s.revocations.Record(ctx, rec); err != nil {
		return "", nil, err
	}
	return encoded, claims, nil
}

// bearerFromRequest reads a raw bearer credential from the header, a
// cookie, or the request body, in that order.
func bearerFromRequest(c *fiber.Ctx, cookieName, bodyField string) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1]
		}
	}
	if cookie := c.Cookies(cookieName); cookie != "" {
		return cookie
	}
	var body map[string]string
	if err := c.BodyParser(&body); err == nil {
		return body[bodyField]
	}
	return ""
}

func (s *AuthService) allowAttempt(c *fiber.Ctx, operation string) bool {
	allowed, err := s.limiter.Allow(c.Context(), operation+":"+c.IP())
	if err != nil {
		// Limiter unavailability must not lock out authentication;
		// every credential still gets fully verified.
		logx.WithError(err).Warn("rate limiter unavailable")
		return true
	}
	return allowed
}

func setTokenCookie(c *fiber.Ctx, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearTokenCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

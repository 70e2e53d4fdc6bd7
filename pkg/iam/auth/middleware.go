package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/williamhuntjr/grubstack-api/pkg/envelope"
	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/iam"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/token"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/user"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
	"github.com/williamhuntjr/grubstack-api/pkg/logx"
)

// accessTokenCookie is the fallback credential carrier after the
// Authorization header; the request body field is the last resort.
const accessTokenCookie = "access_token"

// Middleware resolves a request credential to an identity bound to the
// deployment tenant. Per request it walks: extract credential, classify
// (service secret / session token / federated token), verify signature,
// check revocation, resolve identity, verify tenant membership.
type Middleware struct {
	serviceCredential string
	local             Authenticator
	federated         Authenticator
	revocations       token.RevocationStore
	users             user.Repository
	guard             *user.TenantGuard
	audit             AuditLogger
	logRequests       bool
}

func NewMiddleware(
	serviceCredential string,
	local Authenticator,
	federated Authenticator,
	revocations token.RevocationStore,
	users user.Repository,
	guard *user.TenantGuard,
	audit AuditLogger,
	logRequests bool,
) *Middleware {
	return &Middleware{
		serviceCredential: serviceCredential,
		local:             local,
		federated:         federated,
		revocations:       revocations,
		users:             users,
		guard:             guard,
		audit:             audit,
		logRequests:       logRequests,
	}
}

// Authenticate returns the Fiber handler enforcing the state machine.
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. ExtractCredential
		credential, isBasic := extractCredential(c)
		if credential == "" {
			return m.deny(c, ErrMissingCredential(), "")
		}

		// 2. ClassifyCredential: an exact shared-secret match is a
		// trusted service call and bypasses user/tenant resolution.
		// Anything else, Basic-shaped or not, continues as a token.
		if isBasic && m.isServiceCredential(credential) {
			authCtx := &iam.AuthContext{
				TenantID:  m.guard.TenantID(),
				IsService: true,
			}
			c.Locals(string(kernel.AuthContextKey), authCtx)
			if m.logRequests {
				logx.WithFields(logx.Fields{
					"user":    "service",
					"client":  c.IP(),
					"request": c.OriginalURL(),
				}).Info("service request authenticated")
			}
			return c.Next()
		}

		// 3. VerifySignature through the trust path the token belongs to.
		verified, err := m.verifyCredential(c, credential)
		if err != nil {
			return m.deny(c, err, "")
		}

		// Only access tokens authenticate protected requests; refresh
		// tokens are accepted solely by the refresh endpoint.
		if verified.TokenType != token.TypeAccess {
			return m.deny(c, token.ErrMalformedToken().WithDetail("reason", "refresh token presented as access credential"), verified.Subject.String())
		}

		// 4. CheckRevocation. Federated tokens have no local record and
		// skip the jti check; local tokens fail closed on store errors.
		if !verified.Federated {
			revoked, err := m.revocations.IsRevoked(c.Context(), verified.JTI)
			if err != nil || revoked {
				denyErr := token.ErrRevokedToken()
				if err != nil {
					denyErr = token.ErrRegistry.NewWithCause(token.CodeRevokedToken, err)
				}
				return m.deny(c, denyErr, verified.Subject.String())
			}
		}

		// 5. ResolveIdentity: token validity does not imply account
		// validity.
		account, err := m.users.FindByID(c.Context(), verified.Subject)
		if err != nil {
			return m.deny(c, user.ErrRegistry.NewWithCause(user.CodeUnknownSubject, err), verified.Subject.String())
		}
		if account == nil {
			return m.deny(c, user.ErrUnknownSubject(), verified.Subject.String())
		}

		// 6. VerifyTenant
		membership, err := m.guard.VerifyMembership(c.Context(), account.ID)
		if err != nil {
			return m.deny(c, err, account.ID.String())
		}

		// 7. Authenticated
		authCtx := &iam.AuthContext{
			UserID:    account.ID,
			TenantID:  m.guard.TenantID(),
			Username:  account.Username,
			FirstName: account.FirstName,
			LastName:  account.LastName,
			IsOwner:   membership.IsOwner,
			Federated: verified.Federated,
			TokenJTI:  verified.JTI,
		}
		c.Locals(string(kernel.AuthContextKey), authCtx)

		if m.logRequests {
			m.audit.LogAuthorized(c.Context(), account.ID.String(), c.IP(), c.OriginalURL())
		}
		return c.Next()
	}
}

// verifyCredential routes the token to the local or federated trust
// path by its signing algorithm.
func (m *Middleware) verifyCredential(c *fiber.Ctx, credential string) (*VerifiedSubject, error) {
	parser := jwt.NewParser()
	unverified, _, err := parser.ParseUnverified(credential, &jwt.RegisteredClaims{})
	if err != nil {
		return nil, token.ErrRegistry.NewWithCause(token.CodeMalformedToken, err)
	}

	if alg, _ := unverified.Header["alg"].(string); strings.HasPrefix(alg, "RS") {
		if m.federated == nil {
			return nil, token.ErrMalformedToken().WithDetail("reason", "federated tokens not configured")
		}
		return m.federated.Verify(c.Context(), credential)
	}
	return m.local.Verify(c.Context(), credential)
}

// isServiceCredential compares in constant time.
func (m *Middleware) isServiceCredential(credential string) bool {
	if m.serviceCredential == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), []byte(m.serviceCredential)) == 1
}

// deny logs the forensic trail and writes the uniform error envelope.
func (m *Middleware) deny(c *fiber.Ctx, err error, userID string) error {
	status := fiber.StatusUnauthorized
	message := "Unauthorized"
	var e *errx.Error
	if errx.As(err, &e) {
		status = e.HTTPStatus
		message = e.Message
	}
	m.audit.LogDenied(c.Context(), userID, c.IP(), c.OriginalURL(), string(c.Body()), status, err.Error())
	return envelope.Fail(c, status, message)
}

// extractCredential reads the bearer value; precedence is header,
// cookie, then body field. The second return marks a Basic header.
func extractCredential(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[1] != "" {
			switch strings.ToLower(parts[0]) {
			case "bearer":
				return parts[1], false
			case "basic":
				return parts[1], true
			}
		}
		return "", false
	}

	if cookie := c.Cookies(accessTokenCookie); cookie != "" {
		return cookie, false
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.BodyParser(&body); err == nil && body.AccessToken != "" {
		return body.AccessToken, false
	}
	return "", false
}

// FromContext returns the identity the middleware attached, if any.
func FromContext(c *fiber.Ctx) (*iam.AuthContext, bool) {
	authCtx, ok := c.Locals(string(kernel.AuthContextKey)).(*iam.AuthContext)
	if !ok || authCtx == nil {
		return nil, false
	}
	return authCtx, true
}

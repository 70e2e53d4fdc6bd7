package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/williamhuntjr/grubstack-api/pkg/envelope"
	"github.com/williamhuntjr/grubstack-api/pkg/iam"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/permission"
)

// Mode selects how a gate combines its required permissions.
type Mode int

const (
	// ModeAny passes when at least one required permission is held.
	ModeAny Mode = iota
	// ModeAll passes only when every required permission is held.
	ModeAll
)

// Gate wraps protected operations with a permission check. It runs
// after the middleware has attached an identity. Owners pass every
// check; service credentials are confined to the configured allow-list.
type Gate struct {
	resolver     *permission.Resolver
	audit        AuditLogger
	serviceAllow permission.Set
}

func NewGate(resolver *permission.Resolver, audit AuditLogger, serviceAllow permission.Set) *Gate {
	return &Gate{
		resolver:     resolver,
		audit:        audit,
		serviceAllow: serviceAllow,
	}
}

// RequireAny gates on holding at least one of the permissions.
func (g *Gate) RequireAny(perms ...permission.Permission) fiber.Handler {
	return g.require(ModeAny, perms)
}

// RequireAll gates on holding every one of the permissions.
func (g *Gate) RequireAll(perms ...permission.Permission) fiber.Handler {
	return g.require(ModeAll, perms)
}

func (g *Gate) require(mode Mode, required []permission.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authCtx, ok := FromContext(c)
		if !ok {
			g.audit.LogDenied(c.Context(), "", c.IP(), c.OriginalURL(), string(c.Body()),
				fiber.StatusUnauthorized, "no authenticated identity")
			return envelope.FromError(c, iam.ErrUnauthorized())
		}

		// Service credentials have no user to resolve; they pass only
		// inside the allow-list.
		if authCtx.IsService {
			if authCtx.Allows(g.serviceAllow, mode == ModeAll, required...) {
				return c.Next()
			}
			return g.forbid(c, "service")
		}

		// Ownership short-circuits before resolution so a storage fault
		// cannot lock the owner out.
		if authCtx.IsOwner {
			return c.Next()
		}

		effective, err := g.resolver.Effective(c.Context(), authCtx.UserID, authCtx.TenantID)
		if err != nil {
			// Resolution failure is a denial, never an implicit allow.
			return g.forbid(c, authCtx.UserID.String())
		}
		if authCtx.Allows(effective, mode == ModeAll, required...) {
			return c.Next()
		}
		return g.forbid(c, authCtx.UserID.String())
	}
}

func (g *Gate) forbid(c *fiber.Ctx, userID string) error {
	g.audit.LogDenied(c.Context(), userID, c.IP(), c.OriginalURL(), string(c.Body()),
		fiber.StatusForbidden, "insufficient permission")
	return envelope.FromError(c, iam.ErrAccessDenied())
}

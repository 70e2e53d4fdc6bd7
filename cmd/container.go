// cmd/container.go
//
// Root composition root. Owns infrastructure (DB, Redis) and composes
// the IAM module. This is the only place that knows about ALL modules.
package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/williamhuntjr/grubstack-api/pkg/config"
	"github.com/williamhuntjr/grubstack-api/pkg/gsdb"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/auth"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/auth/authinfra"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/auth/authsrv"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/permission"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/permission/permissioninfra"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/token"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/token/tokeninfra"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/user"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/user/userinfra"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
	"github.com/williamhuntjr/grubstack-api/pkg/logx"
)

// Container holds shared infrastructure and composed module services.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across all modules)
	DB    *sqlx.DB
	Redis *redis.Client
	Store gsdb.Store

	// IAM module
	Codec          *token.Codec
	Revocations    token.RevocationStore
	Users          user.Repository
	Memberships    user.MembershipRepository
	Guard          *user.TenantGuard
	Resolver       *permission.Resolver
	AuthMiddleware *auth.Middleware
	Gate           *auth.Gate
	AuthService    *authsrv.AuthService
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initIAM()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure — DB, Redis
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Database
	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	logx.Info("  ✅ Database connected")

	// 2. Redis
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
	}
	logx.Info("  ✅ Redis connected")

	// 3. Tenant-scoped store
	tenantID := kernel.NewTenantID(c.Config.Auth.TenantID)
	if tenantID.IsEmpty() {
		logx.Fatal("TENANT_ID is required; each deployment serves exactly one tenant")
	}
	c.Store = gsdb.NewPostgresStore(db, tenantID)

	logx.Info("✅ Infrastructure initialized")
}

// ---------------------------------------------------------------------------
// Module composition — IAM wires itself from the shared store
// ---------------------------------------------------------------------------

func (c *Container) initIAM() {
	logx.Info("📦 Initializing IAM module...")

	cfg := c.Config
	tenantID := kernel.NewTenantID(cfg.Auth.TenantID)

	if cfg.Auth.SigningSecret == "" {
		logx.Fatal("AUTH_SIGNING_SECRET is required")
	}
	c.Codec = token.NewCodec(cfg.Auth.SigningSecret, cfg.Auth.Issuer, cfg.Auth.Audience)

	// Repositories over the tenant-scoped store
	c.Revocations = tokeninfra.NewPostgresRevocationStore(c.Store)
	c.Users = userinfra.NewPostgresUserRepository(c.Store)
	c.Memberships = userinfra.NewPostgresMembershipRepository(c.Store)
	c.Guard = user.NewTenantGuard(c.Memberships, tenantID)
	c.Resolver = permission.NewResolver(
		permissioninfra.NewPostgresGrantRepository(c.Store),
		c.Memberships,
	)

	// Federated path is optional; without a provider domain only the
	// locally issued session tokens verify.
	var federated auth.Authenticator
	var profiles auth.ProfileFetcher
	if cfg.Auth0.Domain != "" {
		jwks := authinfra.NewJWKSClient(cfg.Auth0.JWKSURL(), cfg.Auth0.JWKSCacheTTL, nil)
		federated = auth.NewFederatedAuthenticator(jwks, cfg.Auth0.IssuerURL(), cfg.Auth0.Audience)
		profiles = authinfra.NewUserinfoClient(cfg.Auth0.UserinfoURL(), nil)
		logx.Infof("  ✅ Federated identity provider configured (%s)", cfg.Auth0.Domain)
	} else {
		logx.Warn("  ⚠️ No identity provider configured; only local session tokens will verify")
	}

	audit := authinfra.NewLogxAuditService()
	local := auth.NewLocalSessionAuthenticator(c.Codec)

	c.AuthMiddleware = auth.NewMiddleware(
		cfg.Auth.ServiceCredential,
		local,
		federated,
		c.Revocations,
		c.Users,
		c.Guard,
		audit,
		cfg.Auth.LogRequests,
	)

	c.Gate = auth.NewGate(c.Resolver, audit, permission.ParseSet(cfg.Auth.ServicePermissions))

	var limiter auth.RateLimiter = authinfra.NoopRateLimiter{}
	if cfg.RateLimit.Enabled {
		limiter = authinfra.NewRedisRateLimiter(c.Redis, cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
		logx.Infof("  ✅ Rate limiter enabled (%d attempts / %s)", cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	}

	c.AuthService = authsrv.NewAuthService(
		c.Codec,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
		c.Revocations,
		c.Users,
		c.Guard,
		c.Resolver,
		federated,
		profiles,
		limiter,
		audit,
	)

	logx.Info("✅ IAM module initialized")
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}

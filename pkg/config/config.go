package config

import (
	"fmt"
	"time"
)

// Config is the full application configuration, loaded once at process
// start and passed by reference into constructors. There is no ambient
// global lookup anywhere below the composition root.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Auth0     Auth0Config
	RateLimit RateLimitConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port        string
	CORSOrigins string
}

// DatabaseConfig configures the Postgres connection pool.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig configures the Redis client used by the rate limiter.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Address returns host:port for the Redis client.
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig configures the local session-token trust path and the
// tenant binding of this process instance.
type AuthConfig struct {
	// SigningSecret is the HMAC key for locally issued session tokens
	SigningSecret string

	// Issuer and Audience are embedded in and required of local tokens
	Issuer   string
	Audience string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// TenantID binds this deployment to exactly one tenant
	TenantID string

	// ServiceCredential is the static shared secret for trusted
	// service-to-service calls ("Basic <secret>")
	ServiceCredential string

	// ServicePermissions is the allow-list of permission names a
	// service credential may exercise
	ServicePermissions []string

	// LogRequests emits an info line for every authorized request
	LogRequests bool
}

// Auth0Config configures the federated identity-provider trust path.
type Auth0Config struct {
	// Domain is the provider domain, e.g. "tenant.us.auth0.com"
	Domain string

	// Audience required of federated tokens
	Audience string

	// JWKSCacheTTL bounds how long the fetched key set is reused
	JWKSCacheTTL time.Duration
}

// JWKSURL returns the provider's published key-set endpoint.
func (a Auth0Config) JWKSURL() string {
	return fmt.Sprintf("https://%s/.well-known/jwks.json", a.Domain)
}

// IssuerURL returns the issuer expected in federated tokens.
func (a Auth0Config) IssuerURL() string {
	return fmt.Sprintf("https://%s/", a.Domain)
}

// UserinfoURL returns the provider's userinfo endpoint.
func (a Auth0Config) UserinfoURL() string {
	return fmt.Sprintf("https://%s/userinfo", a.Domain)
}

// RateLimitConfig configures the login/refresh rate limiter.
type RateLimitConfig struct {
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
}

// Load builds the configuration from the environment.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DATABASE_HOST", "localhost"),
			Port:            getEnvInt("DATABASE_PORT", 5432),
			User:            getEnv("DATABASE_USER", "grubstack"),
			Password:        getEnv("DATABASE_PASSWORD", ""),
			Name:            getEnv("DATABASE_NAME", "grubstack"),
			SSLMode:         getEnv("DATABASE_SSL", "disable"),
			MaxOpenConns:    getEnvInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			SigningSecret:     getEnv("AUTH_SIGNING_SECRET", ""),
			Issuer:            getEnv("AUTH_ISSUER", "grubstack-api"),
			Audience:          getEnv("AUTH_AUDIENCE", "grubstack"),
			AccessTokenTTL:    getEnvDuration("AUTH_ACCESS_TOKEN_TTL", time.Hour),
			RefreshTokenTTL:   getEnvDuration("AUTH_REFRESH_TOKEN_TTL", 30*24*time.Hour),
			TenantID:          getEnv("TENANT_ID", ""),
			ServiceCredential: getEnv("API_TOKEN", ""),
			ServicePermissions: getEnvStringSlice("AUTH_SERVICE_PERMISSIONS",
				[]string{"ViewFranchises", "ViewStores", "ViewMenus", "ViewItems"}),
			LogRequests: getEnvBool("AUTH_LOG_REQUESTS", false),
		},
		Auth0: Auth0Config{
			Domain:       getEnv("AUTH0_DOMAIN", ""),
			Audience:     getEnv("AUTH0_AUDIENCE", ""),
			JWKSCacheTTL: getEnvDuration("AUTH0_JWKS_TTL", 10*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getEnvBool("RATELIMIT_ENABLED", false),
			MaxAttempts: getEnvInt("RATELIMIT_MAX_ATTEMPTS", 20),
			Window:      getEnvDuration("RATELIMIT_WINDOW", time.Minute),
		},
	}
}

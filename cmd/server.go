package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/williamhuntjr/grubstack-api/pkg/config"
	"github.com/williamhuntjr/grubstack-api/pkg/envelope"
	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/logx"
)

func main() {
	// 1. Initialize Logger
	logx.SetLevel(logx.ParseLevel(getEnv("LOG_LEVEL", "info")))

	logx.Info("🚀 Starting GrubStack API Server...")

	// 2. Load Configuration & Build Container
	cfg := config.Load()
	container := NewContainer(cfg)
	defer container.Cleanup()

	// 3. Create Fiber App
	app := fiber.New(fiber.Config{
		AppName:               "GrubStack API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		IdleTimeout:           120 * time.Second,
	})

	// 4. Global Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS",
		AllowCredentials: cfg.Server.CORSOrigins != "*",
		ExposeHeaders:    "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// 5. Health Check
	app.Get("/health", healthCheckHandler(container))

	// 6. Register Routes
	// Routes: /auth/login, /auth/refresh, /auth/logout, /auth/whoami,
	// /auth/verify_tenant
	container.AuthService.RegisterRoutes(app, container.AuthMiddleware)
	logx.Info("✓ Auth routes registered")

	// 7. 404 Handler
	app.Use(notFoundHandler)

	// 8. Start Server with Graceful Shutdown
	startServer(app, cfg.Server.Port)
}

// ============================================================================
// Handler Functions
// ============================================================================

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "grubstack-api",
			"version": getEnv("APP_VERSION", "1.0.0"),
		}

		if err := container.DB.Ping(); err != nil {
			health["db"] = "unhealthy"
			health["db_error"] = err.Error()
			health["status"] = "degraded"
		} else {
			health["db"] = "healthy"
		}

		if err := container.Redis.Ping(c.Context()).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["redis_error"] = err.Error()
			health["status"] = "degraded"
		} else {
			health["redis"] = "healthy"
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(health)
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return envelope.Fail(c, fiber.StatusNotFound, "The requested endpoint does not exist")
}

// ============================================================================
// Error Handler
// ============================================================================

// globalErrorHandler converts unhandled errors to the standard envelope.
func globalErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"ip":         c.IP(),
		"request_id": c.Get("X-Request-ID"),
	}).Errorf("Request error: %v", err)

	if e, ok := err.(*fiber.Error); ok {
		return envelope.Fail(c, e.Code, e.Message)
	}

	var e *errx.Error
	if errx.As(err, &e) {
		return envelope.FromError(c, e)
	}

	return envelope.Fail(c, fiber.StatusInternalServerError, "An unexpected error occurred")
}

// ============================================================================
// Utility Functions
// ============================================================================

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// startServer starts the server with graceful shutdown
func startServer(app *fiber.App, port string) {
	go func() {
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", port)

		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app)
}

func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("✅ Server exited successfully")
}

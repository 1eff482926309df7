package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/config"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/handler"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/middleware"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/notify"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/repository"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/service"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/validator"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Teens IT Academy Medals",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Initialize medal components (layered architecture)
	ledgerRepo := repository.NewLedgerRepository(pool)
	awardLogRepo := repository.NewAwardLogRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)

	notifier := notify.NewLogNotifier()
	limits := service.QuotaLimits{Gold: cfg.Quota.Gold, Silver: cfg.Quota.Silver, Bronze: cfg.Quota.Bronze}
	lockTimeout := cfg.DB.LockTimeout()

	awardService := service.NewAwardService(pool, ledgerRepo, awardLogRepo, limits, lockTimeout, notifier)
	settlementService := service.NewSettlementService(pool, ledgerRepo, productRepo, purchaseRepo, lockTimeout, notifier)

	awardHandler := handler.NewAwardHandler(awardService, validate)
	purchaseHandler := handler.NewPurchaseHandler(settlementService, validate)
	productHandler := handler.NewProductHandler(settlementService, validate)

	// Health handler
	healthHandler := handler.NewHealthHandler(pool)
	app.Get("/health", healthHandler.Check)

	// Authenticated API routes; the CRM issues the tokens we verify here.
	api := app.Group("/api", middleware.Authenticate(cfg.Auth.JWTSecret))

	staff := middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin)
	admin := middleware.RequireRole(middleware.RoleAdmin)

	api.Get("/students/:id/balance", awardHandler.Balance)
	api.Get("/students/:id/quota", staff, awardHandler.Quota)
	api.Post("/medals/award", staff, awardHandler.Award)
	api.Post("/medals/revoke", admin, awardHandler.Revoke)

	api.Get("/products", productHandler.List)
	api.Post("/products", admin, productHandler.Create)
	api.Patch("/products/:id", admin, productHandler.Update)

	api.Post("/purchases", purchaseHandler.Create)
	api.Get("/purchases", purchaseHandler.List)
	api.Post("/purchases/:id/approve", admin, purchaseHandler.Approve)
	api.Post("/purchases/:id/reject", admin, purchaseHandler.Reject)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

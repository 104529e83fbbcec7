package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pandamall/atlogistics/internal/adapter/auth"
	"github.com/pandamall/atlogistics/internal/adapter/marketplace"
	"github.com/pandamall/atlogistics/internal/adapter/store"
	"github.com/pandamall/atlogistics/internal/handler"
	"github.com/pandamall/atlogistics/internal/middleware"
	"github.com/pandamall/atlogistics/internal/port"
	"github.com/pandamall/atlogistics/internal/service"
	"github.com/pandamall/atlogistics/internal/token"
	"github.com/pandamall/atlogistics/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("app", cfg.AppName).Logger()

	log.Info().
		Str("port", cfg.Port).
		Bool("marketplace_upstream", cfg.MarketplaceToken != "").
		Msg("starting PandaMall API")

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgStore.Close()

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.SeedCatalog(seedCtx, pgStore); err != nil {
		log.Warn().Err(err).Msg("catalog seeding failed")
	}
	cancelSeed()

	// ── Adapters ─────────────────────────────────────────────────────────
	providers := port.AuthProviderRegistry{}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers["google"] = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}

	tmapi := marketplace.NewTMAPIClient(marketplace.TMAPIConfig{
		BaseURL: cfg.MarketplaceBaseURL,
		Token:   cfg.MarketplaceToken,
		Timeout: cfg.MarketplaceTimeout,
	})

	// ── Tokens ───────────────────────────────────────────────────────────
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTIssuer, token.WithTTL(cfg.AccessTokenTTL))
	refresh := token.NewRefreshManager(pgStore, cfg.RefreshTokenTTL)

	// ── Services ─────────────────────────────────────────────────────────
	authService := service.NewAuthService(pgStore, providers, tokens, refresh)
	userService := service.NewUserService(pgStore)
	cartService := service.NewCartService(pgStore)
	catalogService := service.NewCatalogService(pgStore)
	marketplaceService := service.NewMarketplaceService(tmapi)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))

	// Audit middleware (logs all mutating requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// ── Routes ───────────────────────────────────────────────────────────
	authed := middleware.AuthMiddleware(tokens)
	admin := middleware.RequireAdmin()

	authHandler := handler.NewAuthHandler(authService, cfg.FrontendURL, cfg.UploadDir, cfg.AuthTimeout, cfg.RefreshTokenTTL)
	authHandler.Register(app, authed)

	handler.NewCartHandler(cartService).Register(app, authed)
	handler.NewCatalogHandler(catalogService).Register(app, authed, admin)
	handler.NewUserHandler(userService).Register(app, authed, admin)
	handler.NewMarketplaceHandler(marketplaceService).Register(app)
	handler.NewAuditHandler(pgStore).Register(app, authed, admin)

	// Uploaded avatars
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create upload directory")
	}
	app.Get("/uploads/*", static.New(cfg.UploadDir))

	// Health check
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Start ────────────────────────────────────────────────────────────
	go func() {
		log.Info().Str("port", cfg.Port).Msg("fiber listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

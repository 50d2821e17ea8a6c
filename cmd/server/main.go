package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/repositories"
	"fintrack/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	tokenCleanupInterval = time.Hour
	auditRetention       = 90 * 24 * time.Hour
)

func main() {
	// .env is optional; real deployments use environment variables
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	blacklistedTokenRepo := repositories.NewBlacklistedTokenRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	// Services
	metrics := services.NewPrometheusMetrics()
	feed := services.NewTransactionFeed(metrics)
	tokenService := services.NewTokenService(&cfg.JWT)
	passwordService := services.NewPasswordService(cfg.Security.BCryptCost)
	authService := services.NewAuthService(
		userRepo, refreshTokenRepo, auditRepo, blacklistedTokenRepo,
		passwordService, tokenService, metrics, logger)
	ledgerService := services.NewLedgerService(transactionRepo, auditRepo, feed, metrics, logger)
	dashboardService := services.NewDashboardService(transactionRepo, metrics, logger)
	sampleDataService := services.NewSampleDataService(transactionRepo, feed, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService, feed)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	healthHandler := handlers.NewHealthCheckHandler(db)
	devHandler := handlers.NewDevHandler(sampleDataService)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitPerSecond*2))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/logout", authHandler.Logout)

	requireAuth := middleware.RequireAuth(tokenService, blacklistedTokenRepo)
	auth.GET("/me", authHandler.Me, requireAuth)

	transactions := api.Group("/transactions", requireAuth)
	transactions.POST("", transactionHandler.SaveTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/stream", transactionHandler.StreamTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.GET("/:id/form", transactionHandler.GetTransactionForm)

	api.GET("/dashboard", dashboardHandler.GetDashboard, requireAuth)

	if cfg.IsDevelopment() {
		dev := api.Group("/dev", requireAuth)
		dev.POST("/sample-data", devHandler.GenerateSampleData)
		logger.Info("Development endpoints enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go cleanupStaleRecords(ctx, refreshTokenRepo, blacklistedTokenRepo, auditRepo, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	address := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Info("Starting server", "address", address, "environment", cfg.Server.Environment)
	if err := e.Start(address); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// cleanupStaleRecords periodically removes expired refresh tokens, blacklist
// entries, and audit logs past retention so the tables don't grow without bound
func cleanupStaleRecords(
	ctx context.Context,
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := refreshTokenRepo.DeleteExpired(); err != nil {
				logger.Warn("Failed to delete expired refresh tokens", "error", err)
			}
			if _, err := blacklistedTokenRepo.DeleteExpired(); err != nil {
				logger.Warn("Failed to delete expired blacklisted tokens", "error", err)
			}
			if _, err := auditRepo.DeleteOlderThan(auditRetention); err != nil {
				logger.Warn("Failed to prune old audit logs", "error", err)
			}
		}
	}
}

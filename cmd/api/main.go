package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crediario/crediario-backend/internal/cache"
	"github.com/crediario/crediario-backend/internal/config"
	"github.com/crediario/crediario-backend/internal/handler"
	"github.com/crediario/crediario-backend/internal/middleware"
	"github.com/crediario/crediario-backend/internal/notify"
	"github.com/crediario/crediario-backend/internal/repository/postgres"
	"github.com/crediario/crediario-backend/internal/repository/storage"
	"github.com/crediario/crediario-backend/internal/service"
	"github.com/crediario/crediario-backend/internal/tracing"
	"github.com/crediario/crediario-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize tracing (no-op exporter when OTLP_ENDPOINT is unset)
	shutdownTracing, err := tracing.Init("crediario-backend", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	contractRepo := postgres.NewContractRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	apiTokenRepo := postgres.NewAPITokenRepository(pool)

	// Dashboard summary cache (in-memory fallback when Redis is unconfigured)
	var summaryCache cache.SummaryCache
	if cfg.RedisAddr != "" {
		summaryCache = cache.NewRedisSummaryCache(cfg.RedisAddr, cfg.RedisPassword, 0)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Dashboard cache backed by Redis")
	}

	// Overdue notices go out by email when SMTP is configured
	var notifier notify.OverdueNotifier
	if cfg.SMTP.Host != "" {
		notifier = notify.NewEmailSender(cfg.SMTP)
		log.Info().Str("host", cfg.SMTP.Host).Msg("Overdue notices enabled")
	}

	// Contract document storage (optional)
	var documentStorage storage.DocumentRepository
	if cfg.S3.AccessKeyID != "" {
		documentStorage, err = storage.NewS3DocumentRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize document storage")
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Document storage enabled")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, storeRepo)
	planService := service.NewPlanService(planRepo)
	customerService := service.NewCustomerService(customerRepo)
	contractService := service.NewContractService(pool, contractRepo, paymentRepo, planRepo, customerRepo, cfg.DefaultPolicy, cfg.LateFeePolicy)
	dashboardService := service.NewDashboardService(contractRepo, paymentRepo, cfg.DefaultPolicy, cfg.LateFeePolicy, summaryCache)
	apiTokenService := service.NewAPITokenService(apiTokenRepo)
	overdueService := service.NewOverdueService(paymentRepo, notifier, cfg.LateFeePolicy)
	documentService := service.NewDocumentService(documentStorage)

	// WebSocket hub broadcasts contract events to connected store clients
	hub := websocket.NewHub()
	contractService.SetEventPublisher(hub)
	overdueService.SetEventPublisher(hub)
	planService.SetEventPublisher(hub)
	customerService.SetEventPublisher(hub)

	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, &storeLookupAdapter{authService: authService})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket JWT validator")
	}

	// Initialize auth middleware
	storeProvider := &storeProviderAdapter{authService: authService}
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, storeProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	apiTokenAuth := middleware.NewAPITokenAuthMiddleware(apiTokenService)
	dualAuth := middleware.NewDualAuthMiddleware(authMiddleware, apiTokenAuth)

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Plan:      handler.NewPlanHandler(planService),
		Customer:  handler.NewCustomerHandler(customerService, contractService),
		Contract:  handler.NewContractHandler(contractService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		APIToken:  handler.NewAPITokenHandler(apiTokenService),
		Document:  handler.NewDocumentHandler(documentService, contractService),
		Overdue:   handler.NewOverdueHandler(overdueService),
		WebSocket: handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins),
	}

	// Schedule the overdue sweep
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, func() {
		if _, err := overdueService.Sweep(); err != nil {
			log.Error().Err(err).Msg("Scheduled overdue sweep failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.SweepSchedule).Msg("Invalid sweep schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Register API routes
	handler.RegisterRoutes(e, dualAuth, rateLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Warn().Err(err).Msg("Tracing shutdown failed")
	}

	log.Info().Msg("Server exited")
}

// storeProviderAdapter adapts AuthService to middleware.StoreProvider
type storeProviderAdapter struct {
	authService *service.AuthService
}

// GetStoreIDByAuth0ID implements middleware.StoreProvider
func (a *storeProviderAdapter) GetStoreIDByAuth0ID(auth0ID string) (int32, error) {
	store, err := a.authService.GetStoreByAuth0ID(auth0ID)
	if err != nil {
		return 0, err
	}
	return store.ID, nil
}

// storeLookupAdapter adapts AuthService to websocket.StoreLookup
type storeLookupAdapter struct {
	authService *service.AuthService
}

// GetStoreByAuth0ID implements websocket.StoreLookup
func (a *storeLookupAdapter) GetStoreByAuth0ID(auth0ID string) (int32, error) {
	store, err := a.authService.GetStoreByAuth0ID(auth0ID)
	if err != nil {
		return 0, err
	}
	return store.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}

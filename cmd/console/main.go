package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/auth"
	"github.com/community-vercel/theekadar-admin/internal/background"
	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/config"
	"github.com/community-vercel/theekadar-admin/internal/database"
	"github.com/community-vercel/theekadar-admin/internal/handlers"
	middlewareCustom "github.com/community-vercel/theekadar-admin/internal/middleware"
	"github.com/community-vercel/theekadar-admin/internal/repositories"
	"github.com/community-vercel/theekadar-admin/internal/routes"
	"github.com/community-vercel/theekadar-admin/internal/services"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("backend", cfg.Backend.BaseURL),
		slog.Bool("audit_db", cfg.Audit.DBEnabled),
	)

	// Audit database is optional; without it audit entries go to the log only
	var (
		auditRepo services.AuditLogRepository
		dbHealth  handlers.HealthChecker
	)
	if cfg.Audit.DBEnabled {
		db, err := database.NewConnection(context.Background(), &cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer db.Close()

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = db.Migrate(migrateCtx)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}

		auditRepo = repositories.NewAuditLogRepository(db)
		dbHealth = db
	}

	// Backend client and session store
	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, logger)
	store := session.NewStore(cfg.Session.TTL)
	cleanupManager := background.NewCleanupManager(store, logger, cfg.Session.CleanupInterval)

	// Initialize services
	auditService := services.NewAuditService(auditRepo, logger)
	authService := services.NewAuthService(client, store, auditService, logger)
	userService := services.NewUserConsoleService(client, auditService, cfg.Backend.UsersPerPage, logger)
	directoryService := services.NewDirectoryService(client, logger)
	reviewService := services.NewReviewService(client, auditService, logger)
	broadcastService := services.NewBroadcastService(client, auditService, logger)
	analyticsService := services.NewAnalyticsService(client, logger)

	cookies := auth.CookieConfig{
		Name:     cfg.Session.CookieName,
		Domain:   cfg.Session.CookieDomain,
		Secure:   cfg.Session.CookieSecure,
		SameSite: cfg.Session.CookieSameSite,
	}

	// Timing delay blunts credential probing on failed logins
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Server.LoginDelayBaseMs,
		RandomDelayMs: cfg.Server.LoginDelayRandomMs,
	})

	// Initialize handlers
	errs := handlers.NewErrorResponder(authService, cookies, logger)
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cookies, timingDelay, errs),
		Users:      handlers.NewUserHandler(userService, errs),
		Directory:  handlers.NewDirectoryHandler(directoryService, errs),
		Reviews:    handlers.NewReviewHandler(reviewService, errs),
		Broadcasts: handlers.NewBroadcastHandler(broadcastService, errs),
		Dashboard:  handlers.NewDashboardHandler(analyticsService, errs),
	}

	ipResolver, err := pkghttp.NewIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.ClientIP(ipResolver))
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.CORSConfig{AllowedOrigins: cfg.Server.AllowedOrigins}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/health", handlers.Health(store, dbHealth))

	// Register routes
	routes.RegisterRoutes(router, h, store, cookies, routes.Limits{
		Login:   middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.LoginRateLimitPerMin},
		Session: middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.RateLimitPerMinute},
	}, logger)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"valoracademy/database"
	"valoracademy/internal/billing"
	"valoracademy/internal/cache"
	"valoracademy/internal/config"
	"valoracademy/internal/http-api/handler"
	"valoracademy/internal/http-api/middleware"
	"valoracademy/internal/http-api/repository"
	"valoracademy/internal/http-api/service"
	"valoracademy/internal/workers"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	progressCache, err := cache.NewProgressCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		// the cache is an optimization, the API works without it
		logger.Warn("progress cache unavailable, continuing without it", "error", err)
		progressCache = nil
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepo(db)
	lessonRepo := repository.NewLessonRepo(db)
	progressRepo := repository.NewProgressRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// Billing
	stripeClient := billing.NewStripeClient(cfg.StripeAPIKey)
	plans := billing.NewPlanTable(cfg.PriceIDBasic, cfg.PriceIDIntermediate, cfg.PriceIDAdvanced)

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	categoryService := service.NewCategoryService(categoryRepo)
	lessonService := service.NewLessonService(lessonRepo, categoryRepo)
	progressService := service.NewProgressService(progressRepo, lessonRepo, progressCache)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, stripeClient, plans, cfg.BaseURL)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	categoryHandler := handler.NewCategoryHandler(categoryService, lessonService)
	lessonHandler := handler.NewLessonHandler(lessonService)
	progressHandler := handler.NewProgressHandler(progressService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	webhookHandler := handler.NewWebhookHandler(subscriptionService, cfg.StripeWebhookSecret, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RateLimitMiddleware(rate.Limit(10), 30))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Webhook must stay outside auth: Stripe signs its own requests.
	webhookHandler.RegisterRoutes(api)

	authHandler.RegisterRoutes(api.Group("/auth"))

	authed := api.Group("", middleware.AuthMiddleware(authService))
	lessons := authed.Group("/lessons")
	lessonHandler.RegisterRoutes(lessons)
	categoryHandler.RegisterRoutes(authed.Group("/categories"))
	progressHandler.RegisterRoutes(lessons, authed.Group("/progress"))
	subscriptionHandler.RegisterRoutes(authed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewSubscriptionSyncWorker(subscriptionService, cfg.SyncInterval, logger)
	go syncWorker.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}

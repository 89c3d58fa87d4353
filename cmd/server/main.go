package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/apexneuralecosystems/tracking-leads/internal/cache"
	"github.com/apexneuralecosystems/tracking-leads/internal/config"
	"github.com/apexneuralecosystems/tracking-leads/internal/database"
	"github.com/apexneuralecosystems/tracking-leads/internal/handlers"
	"github.com/apexneuralecosystems/tracking-leads/internal/logger"
	"github.com/apexneuralecosystems/tracking-leads/internal/metrics"
	"github.com/apexneuralecosystems/tracking-leads/internal/middleware"
	"github.com/apexneuralecosystems/tracking-leads/internal/repository"
	"github.com/apexneuralecosystems/tracking-leads/internal/telemetry"
	"github.com/apexneuralecosystems/tracking-leads/internal/tracking"
)

func main() {
	// .env is optional; the system environment still applies without it
	_ = godotenv.Load()

	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Log.Info("Starting tracking server",
		zap.String("app", cfg.AppName),
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.Addr()),
	)

	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	var redisClient *cache.RedisClient
	if cfg.RedisEnabled() {
		redisClient, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("Redis unavailable, management API rate limiting disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  cfg.AppName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		SamplingRate: cfg.SamplingRate,
	})
	if err != nil {
		logger.Log.Warn("Failed to initialize tracing", zap.Error(err))
	}

	metrics.Initialize()

	repo := repository.NewLeadRepository(db)
	tracker := tracking.NewService(repo)
	h := handlers.NewHandlers(cfg, repo, tracker)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.GinLogger())
	r.Use(middleware.Metrics())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.AppName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/o/"})))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var apiMiddleware []gin.HandlerFunc
	if redisClient != nil {
		apiMiddleware = append(apiMiddleware,
			middleware.RedisRateLimit(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow))
	}
	h.RegisterRoutes(r, apiMiddleware...)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := telemetry.Shutdown(ctx, tp); err != nil {
		logger.Log.Error("Tracer shutdown failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/aiclient"
	"github.com/padhy-04/LifeSenseAI/internal/api"
	"github.com/padhy-04/LifeSenseAI/internal/auth"
	"github.com/padhy-04/LifeSenseAI/internal/config"
	"github.com/padhy-04/LifeSenseAI/internal/metrics"
	"github.com/padhy-04/LifeSenseAI/internal/ratelimit"
	"github.com/padhy-04/LifeSenseAI/internal/storage"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := internal.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repos, err := storage.NewRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	var m *metrics.Metrics
	var aiOpts []aiclient.Option
	if cfg.MetricsEnabled {
		m = metrics.New()
		aiOpts = append(aiOpts, aiclient.WithObserver(func(task aiclient.Task, outcome string) {
			m.ObserveAICall(string(task), outcome)
		}))
	}
	coach := aiclient.New(cfg.AIServiceURL, cfg.AIServiceAPIKey, cfg.AIServiceTimeout, logger.With("component", "aiclient"), aiOpts...)

	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to init rate limiter: %v", err)
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpire)
	app := api.NewApp(logger, repos, tokens, coach)
	r := api.NewRouter(app, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins(),
		Limiter:        limiter,
		Metrics:        m,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("server listening on :%s (env=%s, storage=%s)", cfg.ServerPort, cfg.Env, cfg.DBType)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown failed: %v", err)
	}
	stop()

	if err := closeLimiter(); err != nil {
		logger.Errorf("failed to close rate limiter: %v", err)
	}
	if err := repos.Close(); err != nil {
		logger.Errorf("failed to close storage: %v", err)
	}
	logger.Info("server stopped")
}

func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func() error, error) {
	if cfg.RateLimitBackend == "redis" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return ratelimit.NewRedisLimiter(client, cfg.RateLimitPerMinute, cfg.RateLimitBurst), client.Close, nil
	}
	l := ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	l.StartCleanup(ctx, 10*time.Minute)
	return l, func() error { return nil }, nil
}

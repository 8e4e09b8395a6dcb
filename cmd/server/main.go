// Command server starts the content API: user and post management with
// cache-aside reads, circuit-broken persistence, and an external data
// aggregation gateway.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/blogforge/content-api/internal/api"
	"github.com/blogforge/content-api/internal/cache"
	"github.com/blogforge/content-api/internal/config"
	"github.com/blogforge/content-api/internal/core/service"
	"github.com/blogforge/content-api/internal/gateway"
	mongodb "github.com/blogforge/content-api/internal/infrastructure/db/mongo"
	redisdb "github.com/blogforge/content-api/internal/infrastructure/db/redis"
	"github.com/blogforge/content-api/internal/resilience"
	"github.com/blogforge/content-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("configuration invalid")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Backends ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	postRepo := mongodb.NewPostRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes failed")
	}
	if err := postRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("post indexes failed")
	}

	// --- Resilience + cache ---
	breakerCfg := resilience.BreakerConfig{
		FailureRatio: cfg.Breaker.FailureRatio,
		MinRequests:  cfg.Breaker.MinRequests,
		Interval:     cfg.Breaker.Interval,
		Timeout:      cfg.Breaker.Timeout,
		MaxRequests:  cfg.Breaker.MaxRequests,
	}
	userExec := resilience.NewExecutor(
		resilience.NewBreaker("users-db", breakerCfg, log),
		cfg.Retry.MaxRetries, cfg.Retry.Backoff, log)
	postExec := resilience.NewExecutor(
		resilience.NewBreaker("posts-db", breakerCfg, log),
		cfg.Retry.MaxRetries, cfg.Retry.Backoff, log)
	store := cache.NewRedisCache(rdb, cfg.Cache.TTL, log)

	// --- Services ---
	tokenSvc, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("token service init failed")
	}
	userSvc := service.NewUserService(userRepo, postRepo, store, userExec, log)
	postSvc := service.NewPostService(postRepo, userRepo, store, postExec, log)
	authSvc := service.NewAuthService(userSvc, tokenSvc, log)
	gw := gateway.New(gateway.Config{
		ServiceAURL: cfg.External.ServiceAURL,
		ServiceBURL: cfg.External.ServiceBURL,
		Timeout:     cfg.External.Timeout,
		RatePerSec:  cfg.External.RatePerSec,
		RateBurst:   cfg.External.RateBurst,
		Breaker:     breakerCfg,
	}, tokenSvc, log)

	e := api.NewRouter(api.Deps{
		Users:   userSvc,
		Posts:   postSvc,
		Auth:    authSvc,
		Tokens:  tokenSvc,
		Gateway: gw,
		Mongo:   db,
		Redis:   rdb,
		Log:     log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ecommerce-platform/identity-service/docs"
	"github.com/ecommerce-platform/identity-service/internal/api"
	"github.com/ecommerce-platform/identity-service/internal/core/password"
	"github.com/ecommerce-platform/identity-service/internal/core/service"
	"github.com/ecommerce-platform/identity-service/internal/core/token"
	"github.com/ecommerce-platform/identity-service/internal/infrastructure/bootstrap"
	"github.com/ecommerce-platform/identity-service/internal/infrastructure/config"
	mongodb "github.com/ecommerce-platform/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/ecommerce-platform/identity-service/internal/infrastructure/db/redis"
	"github.com/ecommerce-platform/identity-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           Identity Service API
// @version         1.0
// @description     Authentication and role-based authorization for the e-commerce platform.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// Explicit construction: every dependency is built here and handed down.
	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	hasher := password.NewPool(password.NewBcryptHasher(cfg.BcryptCost), cfg.HasherWorkers)
	codec := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL, log)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.AttemptWindow)
	authService := service.NewAuthService(userRepo, hasher, codec, throttle, log)

	if cfg.SeedDefaultUsers {
		if err := bootstrap.NewSeeder(userRepo, hasher, log).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("seeding default users failed")
		}
	}

	e := api.NewRouter(authService, codec, db, rdb, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting identity service")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

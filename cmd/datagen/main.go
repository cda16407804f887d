package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/persistence"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/simulator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateGenerator(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	appCfg := cfg.App
	appCfg.Name = "datagen"
	logger, err := observability.NewLogger(appCfg, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	minDelay, maxDelay := cfg.Generator.DelayBounds()
	sim := simulator.New(simulator.Dependencies{
		Activity:  repository.NewActivityRepository(pg.PoolHandle()),
		Publisher: events.NewRedisPublisher(redis.Client, cfg.Redis.Queue),
		Metrics:   simulator.NewMetrics(registry),
		Logger:    logger,
		MinDelay:  minDelay,
		MaxDelay:  maxDelay,
	})

	app := fiber.New(fiber.Config{AppName: "datagen", DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, nil)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler("datagen", cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Metrics: handlers.NewMetricsHandler(registry),
	})

	go func() {
		addr := cfg.Generator.Addr(cfg.App.Host)
		logger.Info("metrics listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("simulation ended", zap.Error(err))
	}

	_ = app.Shutdown()
}

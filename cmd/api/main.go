package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/persistence"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
	"github.com/spec-kit/auth-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, store, closeStore, err := openCredentialStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open credential store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	if err := service.SeedCredential(ctx, repo, cfg.Store, cfg.Auth, logger); err != nil {
		logger.Fatal("failed to seed credential store", zap.Error(err))
	}

	verifier, err := auth.NewVerifier(cfg.Auth.PasswordScheme)
	if err != nil {
		logger.Fatal("failed to build verifier", zap.Error(err))
	}
	if cfg.Auth.PasswordScheme == config.SchemePlaintext {
		logger.Warn("credential store uses plaintext secrets; set AUTH_PASSWORD_SCHEME=bcrypt outside of testing")
	}

	if cfg.Auth.DevSecret {
		logger.Warn("AUTH_JWT_SECRET is unset; signing tokens with the development key")
	}
	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to build token issuer", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	pool := worker.NewPool(cfg.Worker.PoolSize, cfg.Worker.QueueSize)
	defer pool.Close()
	logger.Info("store lookups serialized through worker pool",
		zap.Int("workers", cfg.Worker.PoolSize),
		zap.Int("queue", cfg.Worker.QueueSize))

	gateway := auth.NewGateway(repo, pool, metrics, logger)
	authService := service.NewAuthService(service.AuthDependencies{
		Credentials: gateway,
		Verifier:    verifier,
		Issuer:      issuer,
		Metrics:     metrics,
		Logger:      logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{"credential_store": gateway.Guard(store)}),
		Login:   handlers.NewLoginHandler(authService),
		Metrics: handlers.NewMetricsHandler(registry),
	})

	go func() {
		logger.Info("auth service listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func openCredentialStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.CredentialRepository, handlers.Pinger, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := persistence.RunSQLiteMigrations(ctx, db.DB, logger); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return repository.NewSQLiteCredentialRepository(db.DB), db, db.Close, nil
	case config.DriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, nil, err
			}
		}
		return repository.NewPostgresCredentialRepository(pg.PoolHandle()), pg, pg.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

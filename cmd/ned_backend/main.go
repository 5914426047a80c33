package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/events"
	"github.com/pabg92/ned-project-bw-sub001/internal/handlers"
	"github.com/pabg92/ned-project-bw-sub001/internal/middleware"
	"github.com/pabg92/ned-project-bw-sub001/internal/platform/config"
	"github.com/pabg92/ned-project-bw-sub001/internal/repositories/database/pgsql"
	"github.com/pabg92/ned-project-bw-sub001/internal/repositories/memory"
	"github.com/pabg92/ned-project-bw-sub001/internal/repositories/sqlite"
	"github.com/pabg92/ned-project-bw-sub001/internal/utils"
	"github.com/pabg92/ned-project-bw-sub001/pkg/database"
)

// @title NED Credits API
// @version 1.0
// @description Credit ledger and profile unlocks for the executive candidate marketplace.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, publisher, cleanup, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("driver", cfg.StorageDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	serviceContainer, err := services.NewServiceContainer(cfg, repos, publisher)
	if err != nil {
		logger.Error("Failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Services ready",
		slog.String("storage", cfg.StorageDriver),
		slog.String("auth_policy", serviceContainer.Policy.Name()))

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, analytics)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// setupStorage opens the configured store and decides how ledger events leave
// the process. With PostgreSQL and Kafka the events ride a River outbox job
// written in the append transaction, so the returned publisher is nil.
func setupStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, portssvc.LedgerEventPublisher, func(), error) {
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		p, err := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaLedgerTopic, logger)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, nil, err
		}
		producer = p
	}
	closeProducer := func() {
		if producer != nil {
			producer.Close()
		}
	}

	var publisher portssvc.LedgerEventPublisher = events.LogPublisher{}
	if producer != nil {
		publisher = producer
	}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.DBConnectMaxElapsed, logger)
		if err != nil {
			closeProducer()
			return portsrepo.RepositoryProvider{}, nil, nil, err
		}
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			pool.Close()
			closeProducer()
			return portsrepo.RepositoryProvider{}, nil, nil, err
		}

		if producer == nil || !cfg.OutboxEnabled {
			cleanup := func() {
				closeProducer()
				database.ClosePgxPool(pool, logger)
			}
			return pgsql.NewRepositoryProvider(pool), publisher, cleanup, nil
		}

		outbox, err := events.NewOutbox(ctx, pool, producer, logger)
		if err != nil {
			pool.Close()
			closeProducer()
			return portsrepo.RepositoryProvider{}, nil, nil, err
		}
		if err := outbox.Start(ctx); err != nil {
			pool.Close()
			closeProducer()
			return portsrepo.RepositoryProvider{}, nil, nil, err
		}
		logger.Info("Ledger events delivered through the transactional outbox")

		cleanup := func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := outbox.Stop(stopCtx); err != nil {
				logger.Error("Failed to stop outbox", slog.String("error", err.Error()))
			}
			closeProducer()
			database.ClosePgxPool(pool, logger)
		}
		return pgsql.NewRepositoryProvider(pool, pgsql.WithLedgerTxHook(outbox.Enqueue)), nil, cleanup, nil

	case config.StorageSQLite:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			closeProducer()
			return portsrepo.RepositoryProvider{}, nil, nil, err
		}
		cleanup := func() {
			closeProducer()
			if err := store.Close(); err != nil {
				logger.Error("Failed to close SQLite store", slog.String("error", err.Error()))
			}
		}
		return store.Provider(), publisher, cleanup, nil

	default:
		return memory.New().Provider(), publisher, closeProducer, nil
	}
}

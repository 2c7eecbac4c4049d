package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/conveyorhq/conveyor/config"
	"github.com/conveyorhq/conveyor/internal/connectors"
	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/data"
	"github.com/conveyorhq/conveyor/internal/domain/retry"
	"github.com/conveyorhq/conveyor/internal/engine"
	"github.com/conveyorhq/conveyor/internal/observability/statsd"
	"github.com/conveyorhq/conveyor/internal/service"
)

// ServiceDeps groups the shared dependencies services are built from.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	Groups     *service.GroupService
	Executions *service.ExecutionService
	Registry   *engine.Registry
	Statsd     *statsd.Client
}

// NewServices constructs the repositories, engine, and application services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return ServiceContainer{}, errors.New("config and db are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	groupRepo, err := data.NewGroupRepo(data.GroupRepoOptions{DB: deps.DB, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create group repo: %w", err)
	}
	executionRepo, err := data.NewExecutionRepo(data.ExecutionRepoOptions{DB: deps.DB, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create execution repo: %w", err)
	}

	var cache core.SnapshotCache
	if deps.RedisClient != nil {
		cache = data.NewRedisSnapshotRepo(deps.RedisClient, cfg.Redis.SnapshotTTL)
	}

	statsdClient, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create statsd client: %w", err)
	}

	registry, err := buildEngine(cfg, engineSinks{
		Repo:   executionRepo,
		Cache:  cache,
		Logger: logger,
		Statsd: statsdClient,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	groupService, err := service.NewGroupService(service.GroupServiceOptions{
		Repo:   groupRepo,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create group service: %w", err)
	}

	executionService, err := service.NewExecutionService(service.ExecutionServiceOptions{
		Registry: registry,
		Groups:   groupRepo,
		Repo:     executionRepo,
		Cache:    cache,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create execution service: %w", err)
	}

	return ServiceContainer{
		Groups:     groupService,
		Executions: executionService,
		Registry:   registry,
		Statsd:     statsdClient,
	}, nil
}

type engineSinks struct {
	Repo   core.ExecutionRepository
	Cache  core.SnapshotCache
	Logger *slog.Logger
	Statsd statsd.Sink
}

// buildEngine assembles the connector registry, retry executor, and execution
// registry from configuration.
func buildEngine(cfg *config.AppConfig, sinks engineSinks) (*engine.Registry, error) {
	connectorRegistry, err := connectors.NewBuiltinRegistry(connectors.BuiltinOptions{
		HTTPClient: &http.Client{Timeout: cfg.Engine.FetchTimeout},
		Logger:     sinks.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create connector registry: %w", err)
	}

	policy, err := retry.NewBackoffPolicy(retry.BackoffPolicyOptions{
		DefaultBase: cfg.Engine.BackoffBase,
		NetworkBase: cfg.Engine.NetworkBackoffBase,
	})
	if err != nil {
		return nil, fmt.Errorf("create backoff policy: %w", err)
	}

	executor, err := engine.NewRetryExecutor(engine.RetryExecutorOptions{
		Connectors:        connectorRegistry,
		Policy:            policy,
		Logger:            sinks.Logger,
		DefaultMaxRetries: cfg.Engine.DefaultMaxRetries,
		DefaultTimeout:    cfg.Engine.DefaultTaskTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create retry executor: %w", err)
	}

	registry, err := engine.NewRegistry(engine.RegistryOptions{
		Executor: executor,
		Sink: &service.SnapshotFanout{
			Repo:   sinks.Repo,
			Cache:  sinks.Cache,
			Logger: sinks.Logger,
		},
		Logger:            sinks.Logger,
		Metrics:           sinks.Statsd,
		SnapshotRetention: cfg.Engine.SnapshotRetention,
	})
	if err != nil {
		return nil, fmt.Errorf("create execution registry: %w", err)
	}
	return registry, nil
}

// MarkStaleExecutions fails executions left pending or running by a previous
// process. Interrupted runs are never resumed.
func MarkStaleExecutions(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	repo, err := data.NewExecutionRepo(data.ExecutionRepoOptions{DB: db, Logger: logger})
	if err != nil {
		return fmt.Errorf("create execution repo: %w", err)
	}
	if _, err := repo.MarkStaleRunning(ctx, "interrupted by process restart"); err != nil {
		return fmt.Errorf("mark stale executions: %w", err)
	}
	return nil
}

// RunConfig groups what RunWithShutdown needs to supervise the application.
type RunConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunWithShutdown starts the HTTP server and blocks until a shutdown signal
// arrives or a component fails, then drains in-flight work.
func RunWithShutdown(cfg *RunConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("run config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := NewHTTPServer(cfg.Config, cfg.Services, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		httpCtx, cancel := context.WithTimeout(context.Background(), cfg.Config.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(httpCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}

		engineCtx, cancelEngine := context.WithTimeout(context.Background(), cfg.Config.Engine.ShutdownTimeout)
		defer cancelEngine()
		if err := cfg.Services.Registry.Shutdown(engineCtx); err != nil {
			logger.Error("engine shutdown incomplete", "error", err)
		}

		if cfg.Services.Statsd != nil {
			if err := cfg.Services.Statsd.Close(); err != nil {
				logger.Error("close statsd client failed", "error", err)
			}
		}
		return nil
	})

	return g.Wait()
}

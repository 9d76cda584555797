package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vanshika/graphbatch/internal/config"
	"github.com/vanshika/graphbatch/internal/graph"
	"github.com/vanshika/graphbatch/internal/logging"
	"github.com/vanshika/graphbatch/internal/metrics"
	"github.com/vanshika/graphbatch/internal/ngql"
	"github.com/vanshika/graphbatch/internal/repository"
	"github.com/vanshika/graphbatch/internal/schema"
	"github.com/vanshika/graphbatch/internal/server"
	"github.com/vanshika/graphbatch/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	catalog, err := schema.LoadCatalog(cfg.SchemaPath)
	if err != nil {
		logger.Error("failed to load schema catalog", "path", cfg.SchemaPath, "error", err)
		os.Exit(1)
	}
	if space := catalog.Space(); space != "" && space != cfg.Graph.Space {
		logger.Warn("schema catalog names a different space", "catalog_space", space, "graph_space", cfg.Graph.Space)
	}

	dialect, err := repository.DialectByName(cfg.Dialect())
	if err != nil {
		logger.Error("unsupported dialect", "error", err)
		os.Exit(1)
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry(cfg.Metrics.Namespace)
	}

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	batch := ngql.Options{BatchSize: cfg.Batch.Size, RawStrings: cfg.Batch.RawStrings}
	repo := repository.New(graphClient,
		repository.WithDialect(dialect),
		repository.WithBatchOptions(batch),
		repository.WithConcurrency(cfg.Batch.Concurrency),
		repository.WithMetrics(reg),
		repository.WithLogger(logger),
	)
	ingestor := service.NewBulkIngestor(repo, catalog, cfg.Batch.Workers, reg, logger)
	apiHandlers := server.NewAPIHandlers(logger, ingestor, server.APIOptions{
		Dialect:      dialect,
		Batch:        batch,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.GraphHealthService{Client: graphClient},
		API:              apiHandlers,
		Metrics:          reg,
		MetricsPath:      cfg.Metrics.Path,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowCredentials: cfg.HTTP.AllowCredentials,
	})

	srv := server.New(logger, cfg.HTTP, router)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	opts := graph.Options{
		Driver:         cfg.Graph.Driver,
		Hosts:          cfg.Graph.Hosts,
		Space:          cfg.Graph.Space,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MinConnections: cfg.Graph.MinConnections,
		MaxConnections: cfg.Graph.MaxConnections,
		IdleTime:       cfg.Graph.IdleTime,
		Timeout:        cfg.Graph.Timeout,
	}
	return graph.New(ctx, opts, logger)
}

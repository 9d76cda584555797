package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/graphbatch/internal/config"
	"github.com/vanshika/graphbatch/internal/graph"
	"github.com/vanshika/graphbatch/internal/logging"
	"github.com/vanshika/graphbatch/internal/ngql"
	"github.com/vanshika/graphbatch/internal/repository"
	"github.com/vanshika/graphbatch/internal/schema"
	"github.com/vanshika/graphbatch/internal/service"
)

var errMissingDataset = errors.New("dataset not found")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ingest",
		Short:        "Render and load vertex and edge datasets",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file (defaults to $GRAPHBATCH_CONFIG)")
	flags.String("schema", "", "schema catalog file (overrides config)")
	flags.String("dataset", "", "dataset file (overrides dataset-dir)")
	flags.String("dataset-dir", "./data", "directory containing dataset.json")
	flags.Int("batch-size", 0, "entities per statement, 0 for one statement per label")
	flags.Bool("raw-strings", false, "insert string values without escaping")
	flags.String("dialect", "", "statement dialect: ngql or cypher")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Print the statements for a dataset without executing them",
		RunE:  runRender,
	}
	renderCmd.Flags().StringP("output", "o", "", "write the script to a file instead of stdout")
	rootCmd.AddCommand(renderCmd)

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Execute the statements for a dataset against the graph",
		RunE:  runApply,
	}
	applyCmd.Flags().Int("workers", 0, "label groups ingested in parallel (overrides config)")
	applyCmd.Flags().Int("concurrency", 0, "statements per group in flight (overrides config)")
	rootCmd.AddCommand(applyCmd)

	return rootCmd
}

// loadConfig reads the config file and applies flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("GRAPHBATCH_CONFIG")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.SchemaPath, _ = flags.GetString("schema")
	}
	if flags.Changed("batch-size") {
		cfg.Batch.Size, _ = flags.GetInt("batch-size")
	}
	if flags.Changed("raw-strings") {
		cfg.Batch.RawStrings, _ = flags.GetBool("raw-strings")
	}
	if flags.Changed("dialect") {
		cfg.Batch.Dialect, _ = flags.GetString("dialect")
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		cfg.Batch.Workers, _ = flags.GetInt("workers")
	}
	if flags.Lookup("concurrency") != nil && flags.Changed("concurrency") {
		cfg.Batch.Concurrency, _ = flags.GetInt("concurrency")
	}
	return cfg, cfg.Validate()
}

type job struct {
	cfg     config.Config
	logger  *slog.Logger
	catalog *schema.Catalog
	dialect ngql.Dialect
	dataset service.Dataset
	batch   ngql.Options
}

func prepare(cmd *cobra.Command) (*job, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr()).With("component", "ingest")

	catalog, err := schema.LoadCatalog(cfg.SchemaPath)
	if err != nil {
		return nil, err
	}
	dialect, err := repository.DialectByName(cfg.Dialect())
	if err != nil {
		return nil, err
	}

	datasetPath, _ := cmd.Flags().GetString("dataset")
	datasetDir, _ := cmd.Flags().GetString("dataset-dir")
	path, err := resolveDatasetPath(datasetDir, datasetPath)
	if err != nil {
		return nil, err
	}
	ds, err := service.LoadDataset(path)
	if err != nil {
		return nil, err
	}
	if len(ds.Vertices) == 0 && len(ds.Edges) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", errMissingDataset, path)
	}
	logger.Info("dataset loaded", "path", path, "vertices", len(ds.Vertices), "edges", len(ds.Edges))

	return &job{
		cfg:     cfg,
		logger:  logger,
		catalog: catalog,
		dialect: dialect,
		dataset: ds,
		batch:   ngql.Options{BatchSize: cfg.Batch.Size, RawStrings: cfg.Batch.RawStrings},
	}, nil
}

func runRender(cmd *cobra.Command, _ []string) error {
	j, err := prepare(cmd)
	if err != nil {
		return err
	}

	groups, err := service.Render(j.catalog, j.dialect, j.dataset, ngql.WithOptions(j.batch))
	if err != nil {
		return err
	}

	stmts := service.Statements(groups)
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		if err := writeAndClose(file, stmts); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	} else if err := writeScript(cmd.OutOrStdout(), stmts); err != nil {
		return err
	}

	for _, g := range groups {
		j.logger.Info("rendered group", "kind", g.Kind, "label", g.Label, "entities", g.Entities, "statements", len(g.Statements))
	}
	return nil
}

func runApply(cmd *cobra.Command, _ []string) error {
	j, err := prepare(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	graphClient, err := buildGraphClient(ctx, j.logger, j.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			j.logger.Warn("closing graph client failed", "error", err)
		}
	}()

	repo := repository.New(graphClient,
		repository.WithDialect(j.dialect),
		repository.WithBatchOptions(j.batch),
		repository.WithConcurrency(j.cfg.Batch.Concurrency),
		repository.WithLogger(j.logger),
	)
	ingestor := service.NewBulkIngestor(repo, j.catalog, j.cfg.Batch.Workers, nil, j.logger)

	start := time.Now()
	j.logger.Info("ingesting", "workers", j.cfg.Batch.Workers, "concurrency", j.cfg.Batch.Concurrency, "batch_size", j.cfg.Batch.Size)
	summary, err := ingestor.Ingest(ctx, j.dataset)
	if err != nil {
		j.logger.Error("ingestion failed", "error", err, "vertices", summary.Vertices, "edges", summary.Edges)
		return err
	}

	j.logger.Info("ingestion complete",
		"duration", time.Since(start).String(),
		"vertices", summary.Vertices,
		"edges", summary.Edges,
		"groups", summary.Groups,
	)
	return nil
}

func writeScript(w io.Writer, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := io.WriteString(w, stmt+ngql.StatementSeparator+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// writeAndClose writes the script and closes w. A failed close is reported
// since buffered data may not have reached the file.
func writeAndClose(w io.WriteCloser, stmts []string) error {
	err := writeScript(w, stmts)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

func resolveDatasetPath(baseDir, explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("stat %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}
	path := filepath.Join(baseDir, "dataset.json")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", errMissingDataset, path)
	}
	return path, nil
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
	client, err := graph.New(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "driver", cfg.Graph.Driver, "hosts", cfg.Graph.Hosts, "space", cfg.Graph.Space)
	return client, nil
}

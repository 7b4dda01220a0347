// Command recipedex-sync exports the recipe collection to a JSON snapshot
// and imports snapshots back, for backups and cross-instance moves.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tastebase/recipedex/internal/config"
	"github.com/tastebase/recipedex/internal/db"
	dbBolt "github.com/tastebase/recipedex/internal/db/bolt"
	dbRedis "github.com/tastebase/recipedex/internal/db/redis"
	"github.com/tastebase/recipedex/internal/domain"
	"github.com/tastebase/recipedex/internal/embedding"
	logpkg "github.com/tastebase/recipedex/internal/logger"
	"github.com/tastebase/recipedex/internal/repository/recipestore"
	"github.com/tastebase/recipedex/internal/tagger"
	ingestuc "github.com/tastebase/recipedex/internal/usecase/ingest"
	syncuc "github.com/tastebase/recipedex/internal/usecase/syncer"
	"github.com/tastebase/recipedex/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:           "recipedex-sync",
		Short:         "Export and import recipe collection snapshots",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var workers int

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export all recipes to a JSON snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), args[0])
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import recipes from a JSON snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args[0], workers)
		},
	}
	importCmd.Flags().IntVar(&workers, "workers", 4, "concurrent upserts during import")

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCount(cmd.Context())
		},
	}

	root.AddCommand(exportCmd, importCmd, countCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env holds the wired-up services a subcommand needs.
type env struct {
	store  db.Store
	syncer *syncuc.Service
	logger *zap.Logger
}

func (e *env) close() {
	e.store.Close()
	_ = e.logger.Sync()
}

func setup(ctx context.Context, workers int) (*env, error) {
	cfg, err := config.Load(config.GetEnv())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Sync runs are operator-facing; keep log noise down.
	logger, err := logpkg.NewLogger(config.GetEnv(), "warn")
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	var store db.Store
	switch cfg.Database.Driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	case "bolt":
		store, err = dbBolt.NewStore(cfg.Database.BoltPath)
	default:
		err = fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	var embedder domain.Embedder
	switch cfg.Embedding.Strategy {
	case "token":
		embedder = embedding.NewTokenFeature(cfg.Embedding.Dimensions)
	case "openai":
		embedder = embedding.NewOpenAI(&embedding.OpenAIConfig{
			APIKey:     cfg.Embedding.OpenAI.APIKey,
			BaseURL:    cfg.Embedding.OpenAI.BaseURL,
			Model:      cfg.Embedding.OpenAI.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
	default:
		embedder = embedding.NewHash(cfg.Embedding.Dimensions)
	}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	recipeStore := recipestore.New(
		ctx, store, embedder, cfg.Storage.KeyPrefix, "recipes", readiness,
		recipestore.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		},
		logger,
	)
	if !recipeStore.Available() {
		store.Close()
		return nil, fmt.Errorf("storage backend unreachable: %w", domain.ErrBackendUnavailable)
	}

	ingestSvc := ingestuc.New(recipeStore, tagger.Heuristic{}, logger)
	syncSvc := syncuc.New(recipeStore, ingestSvc, logger).WithWorkers(workers)

	return &env{store: store, syncer: syncSvc, logger: logger}, nil
}

func runExport(ctx context.Context, path string) error {
	e, err := setup(ctx, 0)
	if err != nil {
		return err
	}
	defer e.close()

	total, err := e.syncer.Count(ctx)
	if err != nil {
		return fmt.Errorf("count recipes: %w", err)
	}

	bar := progressbar.Default(int64(total), "exporting")
	n, err := e.syncer.Export(ctx, path, bar)
	if err != nil {
		return err
	}
	_ = bar.Finish()

	fmt.Printf("exported %d recipes to %s\n", n, path)
	return nil
}

func runImport(ctx context.Context, path string, workers int) error {
	e, err := setup(ctx, workers)
	if err != nil {
		return err
	}
	defer e.close()

	bar := progressbar.Default(-1, "importing")
	manifest, err := e.syncer.Import(ctx, path, bar)
	_ = bar.Finish()

	if manifest != nil {
		fmt.Printf("imported %d/%d recipes (%d failed, %d skipped)\n",
			manifest.Succeeded(), manifest.SourceCount,
			manifest.Failed(), manifest.Skipped())
		for _, id := range manifest.FailedIDs() {
			fmt.Printf("  failed: %s\n", id)
		}
	}
	return err
}

func runCount(ctx context.Context) error {
	e, err := setup(ctx, 0)
	if err != nil {
		return err
	}
	defer e.close()

	n, err := e.syncer.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

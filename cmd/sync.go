package cmd

import (
	"context"
	"fmt"

	"stock-sync/core/config"
	"stock-sync/core/database"
	"stock-sync/core/logger"
	"stock-sync/core/storage"
	"stock-sync/feature/catalog"
	"stock-sync/feature/erp"
	"stock-sync/feature/inventory"
	"stock-sync/feature/storefront"
	syncfeature "stock-sync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var runsLimit int

// syncCmd is the parent command for pipeline operations.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run and inspect reconciliation pipelines",
}

// syncRunCmd executes one full pipeline run and reports the result.
var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full reconciliation pipeline once",
	Long: `Pulls the full item list from the ERP, reconciles it into the canonical
store, links or creates storefront products, and pushes stock quantities
into the inventory ledger.`,
	RunE: runSyncPipeline,
}

// syncRunsCmd lists recent runs from the audit log.
var syncRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent sync runs",
	RunE:  listSyncRuns,
}

func init() {
	syncRunsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to show")

	syncCmd.AddCommand(syncRunCmd)
	syncCmd.AddCommand(syncRunsCmd)
	RootCmd.AddCommand(syncCmd)
}

// buildSyncService wires the connectors, canonical store, and orchestrator.
func buildSyncService(cfg *config.Config, db *gorm.DB, l *zap.Logger) (*syncfeature.Service, error) {
	store := catalog.NewStore(db)
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate canonical store: %w", err)
	}

	erpClient, err := erp.NewClient(cfg.Erp, l)
	if err != nil {
		return nil, fmt.Errorf("erp client: %w", err)
	}
	sfClient, err := storefront.NewClient(cfg.Storefront, l)
	if err != nil {
		return nil, fmt.Errorf("storefront client: %w", err)
	}
	invClient, err := inventory.NewClient(cfg.Inventory, l)
	if err != nil {
		return nil, fmt.Errorf("inventory client: %w", err)
	}

	var archiver *syncfeature.Archiver
	if cfg.Sync.ArchiveReports {
		storageClient, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		archiver = syncfeature.NewArchiver(storageClient, cfg.Storage.Bucket, l)
	}

	orch := syncfeature.NewOrchestrator(cfg.Sync, store, erpClient, sfClient, invClient, archiver, l)
	return syncfeature.NewService(store, orch, archiver, l), nil
}

func runSyncPipeline(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	svc, err := buildSyncService(cfg, db, l)
	if err != nil {
		return err
	}

	l.Info("Starting reconciliation run")
	run, err := svc.RunOnce(ctx, "cli")
	if err != nil {
		return err
	}

	l.Info("Run finished",
		zap.Uint("run_id", run.ID),
		zap.String("status", string(run.Status)),
		zap.Int("total", run.Total),
		zap.Int("created", run.Created),
		zap.Int("updated", run.Updated),
		zap.Int("skipped", run.Skipped),
		zap.Int("errors", run.Errors),
		zap.Int64("duration_ms", run.DurationMs),
	)
	if run.Detail != "" {
		l.Warn("Run detail", zap.String("detail", run.Detail))
	}
	return nil
}

func listSyncRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	store := catalog.NewStore(db)
	runs, err := store.ListRuns(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	for _, run := range runs {
		l.Info("Sync run",
			zap.Uint("run_id", run.ID),
			zap.String("status", string(run.Status)),
			zap.Time("started_at", run.StartedAt),
			zap.Int("total", run.Total),
			zap.Int("created", run.Created),
			zap.Int("updated", run.Updated),
			zap.Int("skipped", run.Skipped),
			zap.Int("errors", run.Errors),
			zap.String("triggered_by", run.TriggeredBy),
		)
	}
	if len(runs) == 0 {
		l.Info("No runs recorded yet")
	}
	return nil
}

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stock-sync/feature/catalog"
	"stock-sync/feature/catalog/models"
	"stock-sync/feature/erp"
	"stock-sync/feature/inventory"
	"stock-sync/feature/storefront"

	"go.uber.org/zap"
)

// Phase names one step of the pipeline. Phases run strictly in order; each
// one fully drains its paginated source before the next starts.
type Phase string

const (
	PhaseFetchErp        Phase = "fetch_erp"
	PhaseReconcileErp    Phase = "reconcile_erp"
	PhaseFetchStorefront Phase = "fetch_storefront"
	PhaseMatchStorefront Phase = "match_or_create_storefront"
	PhaseFetchInventory  Phase = "fetch_inventory"
	PhaseInventoryCreate Phase = "reconcile_inventory_create"
	PhaseInventoryUpdate Phase = "reconcile_inventory_update"
)

// Orchestrator drives one sync run through all phases and owns the run row
// and its counters. Per-record failures become counted outcomes; only
// authentication failures, an exhausted hourly budget, and cancellation
// abort the run.
type Orchestrator struct {
	cfg        Config
	store      *catalog.Store
	erp        ErpSource
	storefront StorefrontAPI
	inventory  InventoryAPI
	reconciler *Reconciler
	dispatcher *Dispatcher
	archiver   *Archiver
	logger     *zap.Logger
}

// NewOrchestrator wires the pipeline. The archiver may be nil.
func NewOrchestrator(cfg Config, store *catalog.Store, erpSrc ErpSource, sf StorefrontAPI, inv InventoryAPI, archiver *Archiver, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		store:      store,
		erp:        erpSrc,
		storefront: sf,
		inventory:  inv,
		reconciler: NewReconciler(store, sf, logger),
		dispatcher: NewDispatcher(store, inv, cfg, logger),
		archiver:   archiver,
		logger:     logger,
	}
}

func fatal(err error) bool {
	return errors.Is(err, erp.ErrAuth) ||
		errors.Is(err, erp.ErrHourlyBudget) ||
		errors.Is(err, storefront.ErrAuth) ||
		errors.Is(err, inventory.ErrAuth) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Execute runs every phase against the given run row and finalizes it. The
// returned error is the pipeline-level failure, if any; per-record errors are
// only visible in the run counters.
func (o *Orchestrator) Execute(ctx context.Context, run *models.SyncRun) error {
	start := time.Now()
	stats := &RunStatistics{}

	err := o.runPhases(ctx, run, stats)
	o.finalize(ctx, run, stats, start, err)
	return err
}

func (o *Orchestrator) runPhases(ctx context.Context, run *models.SyncRun, stats *RunStatistics) error {
	items, err := o.fetchErp(ctx, stats)
	if err != nil {
		return err
	}
	if err := o.reconcileErp(ctx, run, stats, items); err != nil {
		return err
	}
	if err := o.matchStorefront(ctx, run, stats); err != nil {
		return err
	}
	records, err := o.fetchInventory(ctx, stats)
	if err != nil {
		return err
	}
	if err := o.reconcileInventoryMatches(ctx, run, stats, records); err != nil {
		return err
	}
	if err := o.dispatchInventoryCreates(ctx, run, stats); err != nil {
		return err
	}
	return o.dispatchInventoryUpdates(ctx, run, stats)
}

// fetchErp drains the ERP item list. A malformed page is skipped and counted;
// any other mid-fetch failure abandons the remaining pages but keeps what was
// already fetched, since reconciliation is idempotent across runs.
func (o *Orchestrator) fetchErp(ctx context.Context, stats *RunStatistics) ([]erp.Item, error) {
	o.logPhase(PhaseFetchErp)
	var all []erp.Item
	pageSize := o.erp.PageSize()

	for page := 1; page <= o.cfg.maxPages(); page++ {
		items, err := o.erp.ListItems(ctx, page)
		if err != nil {
			if fatal(err) {
				return nil, fmt.Errorf("erp fetch: %w", err)
			}
			var decodeErr *erp.DecodeError
			if errors.As(err, &decodeErr) {
				o.logger.Warn("Skipping undecodable ERP page", zap.Int("page", page), zap.Error(err))
				stats.Errors++
				stats.Note(err.Error())
				continue
			}
			o.logger.Error("ERP fetch aborted", zap.Int("page", page), zap.Error(err))
			stats.Errors++
			stats.Note(fmt.Sprintf("erp fetch aborted at page %d: %v", page, err))
			break
		}
		all = append(all, items...)
		if len(items) < pageSize {
			break
		}
	}

	o.logger.Info("ERP fetch complete", zap.Int("items", len(all)))
	return all, nil
}

func (o *Orchestrator) reconcileErp(ctx context.Context, run *models.SyncRun, stats *RunStatistics, items []erp.Item) error {
	o.logPhase(PhaseReconcileErp)
	for i, it := range items {
		outcome := o.reconciler.ApplyErp(ctx, it)
		if outcome.Err != nil && fatal(outcome.Err) {
			return outcome.Err
		}
		stats.Record(outcome)

		if (i+1)%o.cfg.batchSize() == 0 {
			o.persistProgress(ctx, run, stats)
		}
	}
	o.persistProgress(ctx, run, stats)
	return nil
}

type storefrontMatch struct {
	product models.CanonicalProduct
	found   *storefront.Product
	err     error
}

// matchStorefront scans canonical products without a storefront link. The
// read-side lookups run on a bounded worker pool; all canonical writes happen
// afterwards on this goroutine, one record at a time.
func (o *Orchestrator) matchStorefront(ctx context.Context, run *models.SyncRun, stats *RunStatistics) error {
	o.logPhase(PhaseFetchStorefront)
	pending, err := o.store.ListMissingStorefront(ctx)
	if err != nil {
		return fmt.Errorf("list pending storefront matches: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	o.logPhase(PhaseMatchStorefront)
	jobs := make(chan int)
	results := make([]storefrontMatch, len(pending))
	var wg sync.WaitGroup

	for w := 0; w < o.cfg.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				found, err := o.storefront.FindBySKU(ctx, pending[i].SKU)
				results[i] = storefrontMatch{product: pending[i], found: found, err: err}
			}
		}()
	}
	for i := range pending {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i := range results {
		res := &results[i]
		var outcome Outcome
		switch {
		case res.err != nil:
			if fatal(res.err) {
				return fmt.Errorf("storefront lookup: %w", res.err)
			}
			outcome = errOutcome(models.SourceStorefront, TierSKU, res.err)
		case res.found != nil:
			outcome = o.reconciler.LinkStorefront(ctx, &res.product, res.found)
		case o.cfg.CreateStorefront:
			outcome = o.reconciler.CreateStorefrontDraft(ctx, &res.product)
		default:
			outcome = Outcome{Action: models.ActionSkipped, Source: models.SourceStorefront, Detail: "creation disabled"}
		}
		if outcome.Err != nil && fatal(outcome.Err) {
			return outcome.Err
		}
		stats.Record(outcome)
	}

	o.persistProgress(ctx, run, stats)
	return nil
}

func (o *Orchestrator) fetchInventory(ctx context.Context, stats *RunStatistics) ([]inventory.Record, error) {
	o.logPhase(PhaseFetchInventory)
	var all []inventory.Record
	pageSize := o.inventory.PageSize()

	for page := 1; page <= o.cfg.maxPages(); page++ {
		records, err := o.inventory.ListRecords(ctx, page)
		if err != nil {
			if fatal(err) {
				return nil, fmt.Errorf("inventory fetch: %w", err)
			}
			o.logger.Error("Inventory fetch aborted", zap.Int("page", page), zap.Error(err))
			stats.Errors++
			stats.Note(fmt.Sprintf("inventory fetch aborted at page %d: %v", page, err))
			break
		}
		all = append(all, records...)
		if len(records) < pageSize {
			break
		}
	}

	o.logger.Info("Inventory fetch complete", zap.Int("records", len(all)))
	return all, nil
}

func (o *Orchestrator) reconcileInventoryMatches(ctx context.Context, run *models.SyncRun, stats *RunStatistics, records []inventory.Record) error {
	for i, rec := range records {
		outcome := o.reconciler.ApplyInventory(ctx, rec)
		if outcome.Err != nil && fatal(outcome.Err) {
			return outcome.Err
		}
		stats.Record(outcome)

		if (i+1)%o.cfg.batchSize() == 0 {
			o.persistProgress(ctx, run, stats)
		}
	}
	o.persistProgress(ctx, run, stats)
	return nil
}

func (o *Orchestrator) dispatchInventoryCreates(ctx context.Context, run *models.SyncRun, stats *RunStatistics) error {
	if !o.cfg.CreateInventory {
		return nil
	}
	o.logPhase(PhaseInventoryCreate)

	pending, err := o.store.ListMissingInventory(ctx)
	if err != nil {
		return fmt.Errorf("list pending ledger creates: %w", err)
	}

	items := make([]PendingItem, 0, len(pending))
	for i := range pending {
		p := &pending[i]
		items = append(items, PendingItem{
			Product: p,
			Input: inventory.RecordInput{
				ProductID:  p.StorefrontID,
				LocationID: o.inventory.LocationID(),
				SKU:        p.SKU,
				Name:       p.Name,
				Stock:      p.ErpQuantity.String(),
			},
		})
	}

	return o.dispatcher.Dispatch(ctx, BatchCreate, items, o.chunkSink(ctx, run, stats))
}

func (o *Orchestrator) dispatchInventoryUpdates(ctx context.Context, run *models.SyncRun, stats *RunStatistics) error {
	o.logPhase(PhaseInventoryUpdate)

	pending, err := o.store.ListQuantityDrift(ctx)
	if err != nil {
		return fmt.Errorf("list quantity drift: %w", err)
	}

	items := make([]PendingItem, 0, len(pending))
	for i := range pending {
		p := &pending[i]
		items = append(items, PendingItem{
			Product: p,
			Input: inventory.RecordInput{
				ID:    p.InventoryRecordID,
				Stock: p.ErpQuantity.String(),
			},
		})
	}

	return o.dispatcher.Dispatch(ctx, BatchUpdate, items, o.chunkSink(ctx, run, stats))
}

// chunkSink folds a dispatched chunk into the run counters and persists them,
// so a crash between chunks loses no applied progress.
func (o *Orchestrator) chunkSink(ctx context.Context, run *models.SyncRun, stats *RunStatistics) func([]Outcome) error {
	return func(outcomes []Outcome) error {
		for _, out := range outcomes {
			stats.Record(out)
		}
		o.persistProgress(ctx, run, stats)
		return nil
	}
}

func (o *Orchestrator) persistProgress(ctx context.Context, run *models.SyncRun, stats *RunStatistics) {
	stats.ApplyTo(run)
	if err := o.store.SaveRun(ctx, run); err != nil {
		o.logger.Error("Failed to persist run progress", zap.Uint("run_id", run.ID), zap.Error(err))
	}
}

func (o *Orchestrator) finalize(ctx context.Context, run *models.SyncRun, stats *RunStatistics, start time.Time, runErr error) {
	stats.ApplyTo(run)

	finished := time.Now()
	run.FinishedAt = &finished
	run.DurationMs = time.Since(start).Milliseconds()
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Detail = runErr.Error()
	} else {
		run.Status = stats.Status()
	}

	// Finalization must survive the cancellation that may have ended the run.
	saveCtx := context.WithoutCancel(ctx)
	if err := o.store.SaveRun(saveCtx, run); err != nil {
		o.logger.Error("Failed to finalize run", zap.Uint("run_id", run.ID), zap.Error(err))
	}

	if o.archiver != nil && o.cfg.ArchiveReports {
		if err := o.archiver.Archive(saveCtx, run); err != nil {
			o.logger.Warn("Run report archive failed", zap.Uint("run_id", run.ID), zap.Error(err))
		}
	}

	o.logger.Info("Sync run finished",
		zap.Uint("run_id", run.ID),
		zap.String("status", string(run.Status)),
		zap.Int("total", run.Total),
		zap.Int("created", run.Created),
		zap.Int("updated", run.Updated),
		zap.Int("skipped", run.Skipped),
		zap.Int("errors", run.Errors),
		zap.Int64("duration_ms", run.DurationMs))
}

func (o *Orchestrator) logPhase(p Phase) {
	o.logger.Info("Entering sync phase", zap.String("phase", string(p)))
}

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-sync/core/utils"
	"stock-sync/feature/catalog"
	"stock-sync/feature/catalog/models"
	"stock-sync/feature/inventory"

	"go.uber.org/zap"
)

// BatchKind selects which side of the ledger batch endpoint a dispatch fills.
type BatchKind int

const (
	BatchCreate BatchKind = iota
	BatchUpdate
)

// PendingItem pairs a canonical product with the ledger payload derived from
// it. The product is mutated and persisted once the batch result is known.
type PendingItem struct {
	Product *models.CanonicalProduct
	Input   inventory.RecordInput
}

// Dispatcher turns pending ledger writes into bounded batch calls. Chunks are
// submitted sequentially with a short pause in between; a transport failure
// marks the whole chunk as errored and moves on to the next one.
type Dispatcher struct {
	store *catalog.Store
	api   InventoryAPI
	size  int
	delay time.Duration

	sleep func(ctx context.Context, d time.Duration) error

	logger *zap.Logger
}

// NewDispatcher creates a dispatcher with the configured chunk size and delay.
func NewDispatcher(store *catalog.Store, api InventoryAPI, cfg Config, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		api:    api,
		size:   cfg.batchSize(),
		delay:  time.Duration(cfg.BatchDelayMs) * time.Millisecond,
		sleep:  sleepContext,
		logger: logger,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Dispatch submits items chunk by chunk and reports each chunk's outcomes
// through onChunk so the caller can persist counters incrementally. It
// returns early only on cancellation or an authentication failure; everything
// else degrades to per-item error outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, kind BatchKind, items []PendingItem, onChunk func(outcomes []Outcome) error) error {
	for start := 0; start < len(items); start += d.size {
		end := start + d.size
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		if start > 0 {
			if err := d.sleep(ctx, d.delay); err != nil {
				return err
			}
		}

		outcomes, err := d.submitChunk(ctx, kind, chunk)
		if err != nil {
			return err
		}
		if err := onChunk(outcomes); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) submitChunk(ctx context.Context, kind BatchKind, chunk []PendingItem) ([]Outcome, error) {
	var req inventory.BatchRequest
	inputs := make([]inventory.RecordInput, len(chunk))
	for i, item := range chunk {
		inputs[i] = item.Input
	}
	if kind == BatchCreate {
		req.Create = inputs
	} else {
		req.Update = inputs
	}

	resp, err := d.api.Batch(ctx, req)
	if err != nil {
		if errors.Is(err, inventory.ErrAuth) || ctx.Err() != nil {
			return nil, err
		}
		d.logger.Error("Batch submission failed, marking chunk as errored",
			zap.Int("items", len(chunk)), zap.Error(err))
		outcomes := make([]Outcome, len(chunk))
		for i, item := range chunk {
			outcomes[i] = d.markError(ctx, item.Product, fmt.Errorf("batch transport failure: %w", err))
		}
		return outcomes, nil
	}

	results := resp.Update
	if kind == BatchCreate {
		results = resp.Create
	}

	outcomes := make([]Outcome, len(chunk))
	for i, item := range chunk {
		if i >= len(results) {
			outcomes[i] = d.markError(ctx, item.Product, errors.New("batch response shorter than request"))
			continue
		}
		if results[i].Error != nil {
			outcomes[i] = d.markError(ctx, item.Product, fmt.Errorf("ledger rejected item: %s", results[i].Error.String()))
			continue
		}
		outcomes[i] = d.applyResult(ctx, kind, item, results[i])
	}
	return outcomes, nil
}

func (d *Dispatcher) applyResult(ctx context.Context, kind BatchKind, item PendingItem, res inventory.BatchResult) Outcome {
	p := item.Product
	action := models.ActionUpdated
	if kind == BatchCreate {
		action = models.ActionCreated
		p.InventoryRecordID = res.ID
	}
	p.InventoryQuantity = utils.ToDecimal(item.Input.Stock)

	now := time.Now()
	p.LastSyncedAt = &now
	p.LastSyncAction = action
	p.LastSyncSource = models.SourceInventory
	p.LastSyncDetail = ""

	if err := d.store.Save(ctx, p); err != nil {
		return errOutcome(models.SourceInventory, TierInventoryID, err)
	}
	return Outcome{Action: action, Source: models.SourceInventory, Tier: TierInventoryID}
}

func (d *Dispatcher) markError(ctx context.Context, p *models.CanonicalProduct, cause error) Outcome {
	now := time.Now()
	p.LastSyncedAt = &now
	p.LastSyncAction = models.ActionError
	p.LastSyncSource = models.SourceInventory
	p.LastSyncDetail = cause.Error()

	if err := d.store.Save(ctx, p); err != nil {
		d.logger.Error("Failed to persist item error state",
			zap.Uint("canonical_id", p.ID), zap.Error(err))
	}
	return errOutcome(models.SourceInventory, TierInventoryID, cause)
}

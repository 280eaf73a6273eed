package sync

import (
	"context"
	"fmt"
	"testing"

	"stock-sync/feature/catalog"
	"stock-sync/feature/catalog/models"
	"stock-sync/feature/erp"
	"stock-sync/feature/inventory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrchestrator(store *catalog.Store, src *fakeErp, sf *fakeStorefront, inv *fakeInventory, cfg Config) *Orchestrator {
	return NewOrchestrator(cfg, store, src, sf, inv, nil, testLogger())
}

func executeRun(t *testing.T, store *catalog.Store, o *Orchestrator) *models.SyncRun {
	t.Helper()
	ctx := context.Background()
	run, err := store.CreateRun(ctx, "test")
	require.NoError(t, err)
	require.NoError(t, o.Execute(ctx, run))
	return run
}

func TestExecuteFullPipeline(t *testing.T) {
	store := newTestStore(t)
	src := &fakeErp{
		pageSize: 500,
		pages: [][]erp.Item{{
			{InternalID: "M100", Code: "A1", Name: "Chair", Quantity: decimal.NewFromInt(5)},
			{InternalID: "M200", Code: "A2", Name: "Table", Quantity: decimal.NewFromInt(2)},
		}},
	}
	sf := newFakeStorefront()
	inv := &fakeInventory{}

	o := testOrchestrator(store, src, sf, inv, Config{CreateStorefront: true, CreateInventory: true})
	run := executeRun(t, store, o)

	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 6, run.Total)
	assert.Equal(t, 6, run.Created)
	assert.Zero(t, run.Errors)
	require.NotNil(t, run.FinishedAt)

	// Both products ended up linked everywhere with the ledger quantity
	// confirmed at the ERP figure.
	ctx := context.Background()
	p, err := store.FindByErpInternalID(ctx, "M100")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NotZero(t, p.StorefrontID)
	assert.NotZero(t, p.InventoryRecordID)
	assert.True(t, p.InventoryQuantity.Equal(decimal.NewFromInt(5)))

	// Storefront creations default to drafts pending review.
	require.Len(t, sf.created, 2)

	persisted, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, persisted.Status)
	assert.Equal(t, 6, persisted.Created)
}

func TestExecuteTwiceIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	src := &fakeErp{
		pageSize: 500,
		pages: [][]erp.Item{{
			{InternalID: "M100", Code: "A1", Name: "Chair", Quantity: decimal.NewFromInt(5)},
			{InternalID: "M200", Code: "A2", Name: "Table", Quantity: decimal.NewFromInt(2)},
		}},
	}
	sf := newFakeStorefront()
	inv := &fakeInventory{}

	o := testOrchestrator(store, src, sf, inv, Config{CreateStorefront: true, CreateInventory: true})
	first := executeRun(t, store, o)
	require.Equal(t, 6, first.Created)

	second := executeRun(t, store, o)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Updated)
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, models.RunStatusCompleted, second.Status)
}

func TestExecuteFetchStopsAtPageCeiling(t *testing.T) {
	store := newTestStore(t)
	src := &fakeErp{pageSize: 2, fullPages: true}
	o := testOrchestrator(store, src, newFakeStorefront(), &fakeInventory{}, Config{MaxPages: 3})

	run := executeRun(t, store, o)
	assert.Equal(t, 3, src.calls)
	assert.Equal(t, 6, run.Created)
}

func TestExecuteFailsOnErpAuthError(t *testing.T) {
	store := newTestStore(t)
	src := &fakeErp{pageSize: 500, err: fmt.Errorf("%w: status 401", erp.ErrAuth)}
	o := testOrchestrator(store, src, newFakeStorefront(), &fakeInventory{}, Config{})

	ctx := context.Background()
	run, err := store.CreateRun(ctx, "test")
	require.NoError(t, err)

	execErr := o.Execute(ctx, run)
	require.Error(t, execErr)
	assert.ErrorIs(t, execErr, erp.ErrAuth)

	persisted, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, persisted.Status)
	assert.Contains(t, persisted.Detail, "auth")
}

func TestExecutePushesQuantityDriftToLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := &models.CanonicalProduct{
		ErpInternalID:     "M900",
		SKU:               "A1",
		StorefrontID:      500,
		InventoryRecordID: 44,
		ErpQuantity:       decimal.NewFromInt(9),
		InventoryQuantity: decimal.NewFromInt(3),
	}
	require.NoError(t, store.Create(ctx, p))

	inv := &fakeInventory{}
	o := testOrchestrator(store, &fakeErp{pageSize: 500}, newFakeStorefront(), inv, Config{CreateInventory: true})
	run := executeRun(t, store, o)

	assert.Equal(t, 1, run.Updated)
	require.Len(t, inv.batches, 1)
	require.Len(t, inv.batches[0].Update, 1)
	assert.Equal(t, int64(44), inv.batches[0].Update[0].ID)
	assert.Equal(t, "9", inv.batches[0].Update[0].Stock)

	reloaded, err := store.FindByInventoryRecordID(ctx, 44)
	require.NoError(t, err)
	assert.True(t, reloaded.InventoryQuantity.Equal(decimal.NewFromInt(9)))
}

func TestExecuteLeavesInventoryOnlyQuantityUntouched(t *testing.T) {
	store := newTestStore(t)
	inv := &fakeInventory{records: []inventory.Record{
		{ID: 44, SKU: "B2", Name: "Stool", Stock: "7"},
	}}

	// The record exists only in the ledger; without ERP data there is no
	// authoritative quantity to push back.
	o := testOrchestrator(store, &fakeErp{pageSize: 500}, newFakeStorefront(), inv, Config{CreateInventory: true})
	first := executeRun(t, store, o)

	assert.Equal(t, 1, first.Created)
	assert.Zero(t, first.Updated)
	assert.Empty(t, inv.batches)

	ctx := context.Background()
	p, err := store.FindByInventoryRecordID(ctx, 44)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.InventoryQuantity.Equal(decimal.NewFromInt(7)))

	second := executeRun(t, store, o)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Updated)
	assert.Empty(t, inv.batches)

	p, err = store.FindByInventoryRecordID(ctx, 44)
	require.NoError(t, err)
	assert.True(t, p.InventoryQuantity.Equal(decimal.NewFromInt(7)))
}

func TestExecuteSkipsCreationWhenDisabled(t *testing.T) {
	store := newTestStore(t)
	src := &fakeErp{
		pageSize: 500,
		pages: [][]erp.Item{{
			{InternalID: "M100", Code: "A1", Quantity: decimal.NewFromInt(5)},
		}},
	}
	sf := newFakeStorefront()
	inv := &fakeInventory{}

	o := testOrchestrator(store, src, sf, inv, Config{})
	run := executeRun(t, store, o)

	assert.Empty(t, sf.created)
	assert.Empty(t, inv.batches)
	// One ERP create plus the skipped storefront candidate.
	assert.Equal(t, 1, run.Created)
	assert.Equal(t, 1, run.Skipped)
}

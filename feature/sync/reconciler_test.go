package sync

import (
	"context"
	"testing"

	"stock-sync/feature/catalog/models"
	"stock-sync/feature/erp"
	"stock-sync/feature/inventory"
	"stock-sync/feature/storefront"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countProducts(t *testing.T, r *Reconciler) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.store.DB().Model(&models.CanonicalProduct{}).Count(&n).Error)
	return n
}

func TestApplyErpCreatesNewCanonicalRecord(t *testing.T) {
	store := newTestStore(t)
	r := NewReconciler(store, newFakeStorefront(), testLogger())
	ctx := context.Background()

	out := r.ApplyErp(ctx, erp.Item{InternalID: "M100", Code: "A1", Quantity: decimal.NewFromInt(5)})
	assert.Equal(t, models.ActionCreated, out.Action)
	assert.Equal(t, models.SourceErp, out.Source)

	p, err := store.FindByErpInternalID(ctx, "M100")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "A1", p.SKU)
	assert.True(t, p.ErpQuantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, p.InventoryQuantity.IsZero())
}

func TestApplyErpUnchangedRecordIsSkipped(t *testing.T) {
	store := newTestStore(t)
	r := NewReconciler(store, newFakeStorefront(), testLogger())
	ctx := context.Background()

	item := erp.Item{InternalID: "M100", Code: "A1", Name: "Widget", Quantity: decimal.NewFromInt(5)}

	out := r.ApplyErp(ctx, item)
	require.Equal(t, models.ActionCreated, out.Action)

	out = r.ApplyErp(ctx, item)
	assert.Equal(t, models.ActionSkipped, out.Action)
	assert.Equal(t, TierInternalID, out.Tier)
	assert.Equal(t, int64(1), countProducts(t, r))
}

func TestApplyErpUpdatesChangedQuantity(t *testing.T) {
	store := newTestStore(t)
	r := NewReconciler(store, newFakeStorefront(), testLogger())
	ctx := context.Background()

	item := erp.Item{InternalID: "M100", Code: "A1", Quantity: decimal.NewFromInt(5)}
	require.Equal(t, models.ActionCreated, r.ApplyErp(ctx, item).Action)

	item.Quantity = decimal.NewFromInt(9)
	out := r.ApplyErp(ctx, item)
	assert.Equal(t, models.ActionUpdated, out.Action)

	p, err := store.FindByErpInternalID(ctx, "M100")
	require.NoError(t, err)
	assert.True(t, p.ErpQuantity.Equal(decimal.NewFromInt(9)))
}

func TestApplyErpSKUConflictIsPartialUpdate(t *testing.T) {
	store := newTestStore(t)
	r := NewReconciler(store, newFakeStorefront(), testLogger())
	ctx := context.Background()

	owner := &models.CanonicalProduct{SKU: "A1", Name: "Owner"}
	require.NoError(t, store.Create(ctx, owner))
	target := &models.CanonicalProduct{ErpInternalID: "M100", SKU: "OLD"}
	require.NoError(t, store.Create(ctx, target))

	// The item would move SKU "A1" onto the target, which another record
	// owns. Everything but the key is applied.
	out := r.ApplyErp(ctx, erp.Item{InternalID: "M100", Code: "A1", Name: "Fresh", Quantity: decimal.NewFromInt(2)})
	assert.Equal(t, models.ActionUpdated, out.Action)
	assert.Contains(t, out.Detail, "A1")

	updated, err := store.FindByErpInternalID(ctx, "M100")
	require.NoError(t, err)
	assert.Equal(t, "OLD", updated.SKU)
	assert.Equal(t, "Fresh", updated.Name)
	assert.True(t, updated.ErpQuantity.Equal(decimal.NewFromInt(2)))
	assert.Contains(t, updated.LastSyncDetail, "A1")

	untouched, err := store.FindBySKU(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, untouched.ID)
	assert.Equal(t, "Owner", untouched.Name)
}

func TestApplyErpWithoutKeysIsSkipped(t *testing.T) {
	store := newTestStore(t)
	r := NewReconciler(store, newFakeStorefront(), testLogger())

	out := r.ApplyErp(context.Background(), erp.Item{Name: "nameless"})
	assert.Equal(t, models.ActionSkipped, out.Action)
	assert.Equal(t, int64(0), countProducts(t, r))
}

func TestApplyInventoryLinksAndWritesLedgerQuantityOnly(t *testing.T) {
	store := newTestStore(t)
	r := NewReconciler(store, newFakeStorefront(), testLogger())
	ctx := context.Background()

	p := &models.CanonicalProduct{SKU: "A1", ErpQuantity: decimal.NewFromInt(5)}
	require.NoError(t, store.Create(ctx, p))

	out := r.ApplyInventory(ctx, inventory.Record{ID: 44, SKU: "A1", Stock: "3"})
	assert.Equal(t, models.ActionUpdated, out.Action)
	assert.Equal(t, TierSKU, out.Tier)

	got, err := store.FindByInventoryRecordID(ctx, 44)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, got.InventoryQuantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, got.ErpQuantity.Equal(decimal.NewFromInt(5)), "erp quantity belongs to the erp phase")
}

func TestCreateFromInventoryRefusesOwnedSKU(t *testing.T) {
	store := newTestStore(t)
	r := NewReconciler(store, newFakeStorefront(), testLogger())
	ctx := context.Background()

	owner := &models.CanonicalProduct{SKU: "A1"}
	require.NoError(t, store.Create(ctx, owner))

	out := r.createFromInventory(ctx, inventory.Record{ID: 99, SKU: "A1", Stock: "7"})
	assert.Equal(t, models.ActionSkippedConflict, out.Action)
	assert.Contains(t, out.Detail, "A1")
	assert.Equal(t, int64(1), countProducts(t, r))
}

func TestCreateFromInventoryBackfillsNameFromStorefront(t *testing.T) {
	store := newTestStore(t)
	sf := newFakeStorefront()
	sf.byID[55] = &storefront.Product{ID: 55, SKU: "A1", Name: "Backfilled", RegularPrice: "19.90"}
	r := NewReconciler(store, sf, testLogger())
	ctx := context.Background()

	out := r.ApplyInventory(ctx, inventory.Record{ID: 99, ProductID: 55, SKU: "A1", Stock: "7"})
	require.Equal(t, models.ActionCreated, out.Action)

	p, err := store.FindBySKU(ctx, "A1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Backfilled", p.Name)
	assert.True(t, p.RetailPrice.Equal(decimal.RequireFromString("19.90")))
	assert.Equal(t, int64(99), p.InventoryRecordID)
	assert.True(t, p.InventoryQuantity.Equal(decimal.NewFromInt(7)))
}

func TestLinkStorefrontReportsResolvedTier(t *testing.T) {
	store := newTestStore(t)
	r := NewReconciler(store, newFakeStorefront(), testLogger())
	ctx := context.Background()

	p := &models.CanonicalProduct{StorefrontID: 500, SKU: "A1"}
	require.NoError(t, store.Create(ctx, p))

	// Matched by the storefront id tier; the outcome must say so.
	out := r.LinkStorefront(ctx, p, &storefront.Product{ID: 500, SKU: "A1", Name: "Chair"})
	assert.Equal(t, models.ActionUpdated, out.Action)
	assert.Equal(t, TierStorefrontID, out.Tier)
}

func TestLinkStorefrontRefusesAlreadyLinkedProduct(t *testing.T) {
	store := newTestStore(t)
	r := NewReconciler(store, newFakeStorefront(), testLogger())
	ctx := context.Background()

	linked := &models.CanonicalProduct{StorefrontID: 500, SKU: "A1"}
	require.NoError(t, store.Create(ctx, linked))
	other := &models.CanonicalProduct{SKU: "A2"}
	require.NoError(t, store.Create(ctx, other))

	out := r.LinkStorefront(ctx, other, &storefront.Product{ID: 500, SKU: "A1"})
	assert.Equal(t, models.ActionSkippedConflict, out.Action)

	reloaded, err := store.FindBySKU(ctx, "A2")
	require.NoError(t, err)
	assert.Zero(t, reloaded.StorefrontID)
}

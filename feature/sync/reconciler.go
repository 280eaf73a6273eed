package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-sync/feature/catalog"
	"stock-sync/feature/catalog/models"
	"stock-sync/feature/erp"
	"stock-sync/feature/inventory"
	"stock-sync/feature/storefront"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reconciler decides and applies one action per source record: create,
// update, skip, or error. All canonical writes flow through here, one record
// at a time; a per-record failure is converted into an Outcome and never
// aborts the surrounding phase.
type Reconciler struct {
	store      *catalog.Store
	resolver   *Resolver
	storefront StorefrontAPI
	logger     *zap.Logger
}

// NewReconciler creates the reconciliation engine. The storefront client is
// used only for the bounded name backfill on inventory-origin creation and
// may be nil in setups without a storefront.
func NewReconciler(store *catalog.Store, storefront StorefrontAPI, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:      store,
		resolver:   NewResolver(store),
		storefront: storefront,
		logger:     logger,
	}
}

func setString(dst *string, src string, changed *bool) {
	if src != "" && *dst != src {
		*dst = src
		*changed = true
	}
}

func setDecimal(dst *decimal.Decimal, src decimal.Decimal, changed *bool) {
	if !dst.Equal(src) {
		*dst = src
		*changed = true
	}
}

func (r *Reconciler) stamp(p *models.CanonicalProduct, action models.SyncAction, source models.SyncSource, detail string) {
	now := time.Now()
	p.LastSyncedAt = &now
	p.LastSyncAction = action
	p.LastSyncSource = source
	p.LastSyncDetail = detail
}

// ApplyErp reconciles one ERP item. The ERP is authoritative for identity and
// commercial fields, so matched records take every ERP value; only the SKU is
// guarded against duplicating another record's key. An item whose fields all
// match the canonical record is reported as skipped so a repeat run counts no
// updates.
func (r *Reconciler) ApplyErp(ctx context.Context, it erp.Item) Outcome {
	if it.InternalID == "" && it.Code == "" && it.Barcode == "" {
		return Outcome{Action: models.ActionSkipped, Source: models.SourceErp, Detail: "no resolution key"}
	}

	p, tier, err := r.resolver.ResolveErp(ctx, it)
	if err != nil {
		return errOutcome(models.SourceErp, TierNone, err)
	}
	if p == nil {
		return r.createFromErp(ctx, it)
	}

	changed := false
	setString(&p.ErpInternalID, it.InternalID, &changed)
	setString(&p.ErpCode, it.Code, &changed)
	setString(&p.ErpBarcode, it.Barcode, &changed)
	setString(&p.Name, it.Name, &changed)
	setString(&p.Category, it.Category, &changed)
	setString(&p.Unit, it.Unit, &changed)
	setString(&p.VatClass, it.VatClass, &changed)
	setDecimal(&p.RetailPrice, it.RetailPrice, &changed)
	setDecimal(&p.WholesalePrice, it.WholesalePrice, &changed)
	setDecimal(&p.SalePrice, it.SalePrice, &changed)
	setDecimal(&p.PurchasePrice, it.PurchasePrice, &changed)
	setDecimal(&p.Discount, it.Discount, &changed)
	setDecimal(&p.ErpQuantity, it.Quantity, &changed)

	detail := ""
	if sku := it.SKU(); sku != "" && sku != p.SKU {
		owner, err := r.store.SKUOwner(ctx, sku)
		if err != nil {
			return errOutcome(models.SourceErp, tier, err)
		}
		if owner != 0 && owner != p.ID {
			// Partial update: everything but the conflicting key was applied.
			detail = fmt.Sprintf("sku conflict: %s owned by canonical %d", sku, owner)
			r.logger.Warn("SKU conflict during update",
				zap.String("sku", sku), zap.Uint("canonical_id", p.ID), zap.Uint("owner_id", owner))
		} else {
			p.SKU = sku
			changed = true
		}
	}

	if !changed {
		if detail == "" {
			detail = "unchanged"
		}
		return Outcome{Action: models.ActionSkipped, Source: models.SourceErp, Tier: tier, Detail: detail}
	}

	r.stamp(p, models.ActionUpdated, models.SourceErp, detail)
	if err := r.store.Save(ctx, p); err != nil {
		return errOutcome(models.SourceErp, tier, err)
	}
	return Outcome{Action: models.ActionUpdated, Source: models.SourceErp, Tier: tier, Detail: detail}
}

func (r *Reconciler) createFromErp(ctx context.Context, it erp.Item) Outcome {
	p := &models.CanonicalProduct{
		ErpInternalID:  it.InternalID,
		ErpCode:        it.Code,
		ErpBarcode:     it.Barcode,
		SKU:            it.SKU(),
		Name:           it.Name,
		Category:       it.Category,
		Unit:           it.Unit,
		VatClass:       it.VatClass,
		RetailPrice:    it.RetailPrice,
		WholesalePrice: it.WholesalePrice,
		SalePrice:      it.SalePrice,
		PurchasePrice:  it.PurchasePrice,
		Discount:       it.Discount,
		ErpQuantity:    it.Quantity,
	}
	r.stamp(p, models.ActionCreated, models.SourceErp, "")

	if err := r.store.Create(ctx, p); err != nil {
		if errors.Is(err, catalog.ErrSKUConflict) || errors.Is(err, catalog.ErrInternalIDConflict) {
			return Outcome{Action: models.ActionSkippedConflict, Source: models.SourceErp, Detail: err.Error()}
		}
		return errOutcome(models.SourceErp, TierNone, err)
	}
	return Outcome{Action: models.ActionCreated, Source: models.SourceErp}
}

// ApplyInventory reconciles one ledger record. A match links the record id
// and refreshes the ledger-confirmed quantity; identity fields are only
// filled when the canonical side is still empty. A miss creates a canonical
// record, re-checking SKU uniqueness first.
func (r *Reconciler) ApplyInventory(ctx context.Context, rec inventory.Record) Outcome {
	if rec.ID == 0 && rec.SKU == "" {
		return Outcome{Action: models.ActionSkipped, Source: models.SourceInventory, Detail: "no resolution key"}
	}

	p, tier, err := r.resolver.ResolveInventory(ctx, rec)
	if err != nil {
		return errOutcome(models.SourceInventory, TierNone, err)
	}
	if p == nil {
		return r.createFromInventory(ctx, rec)
	}

	changed := false
	if rec.ID != 0 && p.InventoryRecordID != rec.ID {
		p.InventoryRecordID = rec.ID
		changed = true
	}
	if p.Name == "" {
		setString(&p.Name, rec.Name, &changed)
	}
	if p.SKU == "" && rec.SKU != "" {
		owner, err := r.store.SKUOwner(ctx, rec.SKU)
		if err != nil {
			return errOutcome(models.SourceInventory, tier, err)
		}
		if owner == 0 {
			p.SKU = rec.SKU
			changed = true
		}
	}
	setDecimal(&p.InventoryQuantity, rec.Quantity(), &changed)

	if !changed {
		return Outcome{Action: models.ActionSkipped, Source: models.SourceInventory, Tier: tier, Detail: "unchanged"}
	}

	r.stamp(p, models.ActionUpdated, models.SourceInventory, "")
	if err := r.store.Save(ctx, p); err != nil {
		return errOutcome(models.SourceInventory, tier, err)
	}
	return Outcome{Action: models.ActionUpdated, Source: models.SourceInventory, Tier: tier}
}

func (r *Reconciler) createFromInventory(ctx context.Context, rec inventory.Record) Outcome {
	if rec.SKU == "" {
		return Outcome{Action: models.ActionSkipped, Source: models.SourceInventory, Detail: "no sku on unmatched ledger record"}
	}

	owner, err := r.store.SKUOwner(ctx, rec.SKU)
	if err != nil {
		return errOutcome(models.SourceInventory, TierNone, err)
	}
	if owner != 0 {
		return Outcome{
			Action: models.ActionSkippedConflict,
			Source: models.SourceInventory,
			Detail: fmt.Sprintf("sku %s already owned by canonical %d", rec.SKU, owner),
		}
	}

	p := &models.CanonicalProduct{
		InventoryRecordID: rec.ID,
		StorefrontID:      rec.ProductID,
		SKU:               rec.SKU,
		Name:              rec.Name,
		InventoryQuantity: rec.Quantity(),
	}

	// One bounded side-fetch to backfill the commercial name; never a cascade.
	if p.Name == "" && rec.ProductID != 0 && r.storefront != nil {
		sp, err := r.storefront.GetProduct(ctx, rec.ProductID)
		if err != nil {
			r.logger.Warn("Name backfill lookup failed",
				zap.Int64("storefront_id", rec.ProductID), zap.Error(err))
		} else if sp != nil {
			p.Name = sp.Name
			p.RetailPrice = sp.Price()
		}
	}

	r.stamp(p, models.ActionCreated, models.SourceInventory, "")
	if err := r.store.Create(ctx, p); err != nil {
		if errors.Is(err, catalog.ErrSKUConflict) {
			return Outcome{Action: models.ActionSkippedConflict, Source: models.SourceInventory, Detail: err.Error()}
		}
		return errOutcome(models.SourceInventory, TierNone, err)
	}
	return Outcome{Action: models.ActionCreated, Source: models.SourceInventory}
}

// LinkStorefront attaches a found storefront product to a canonical record.
// Storefront data never overwrites ERP-sourced fields; only an empty name is
// filled.
func (r *Reconciler) LinkStorefront(ctx context.Context, p *models.CanonicalProduct, sp *storefront.Product) Outcome {
	existing, tier, err := r.resolver.ResolveStorefront(ctx, *sp)
	if err != nil {
		return errOutcome(models.SourceStorefront, TierNone, err)
	}
	if existing != nil && existing.ID != p.ID {
		return Outcome{
			Action: models.ActionSkippedConflict,
			Source: models.SourceStorefront,
			Tier:   tier,
			Detail: fmt.Sprintf("storefront product %d already linked to canonical %d", sp.ID, existing.ID),
		}
	}

	changed := false
	if p.StorefrontID != sp.ID {
		p.StorefrontID = sp.ID
		changed = true
	}
	if p.Name == "" {
		setString(&p.Name, sp.Name, &changed)
	}

	if !changed {
		return Outcome{Action: models.ActionSkipped, Source: models.SourceStorefront, Detail: "unchanged"}
	}

	r.stamp(p, models.ActionUpdated, models.SourceStorefront, "")
	if err := r.store.Save(ctx, p); err != nil {
		return errOutcome(models.SourceStorefront, TierNone, err)
	}
	return Outcome{Action: models.ActionUpdated, Source: models.SourceStorefront, Tier: tier}
}

// CreateStorefrontDraft creates a draft storefront product for a canonical
// record that matched nothing and links the new id back.
func (r *Reconciler) CreateStorefrontDraft(ctx context.Context, p *models.CanonicalProduct) Outcome {
	in := storefront.NewProduct{
		SKU:  p.SKU,
		Name: p.Name,
	}
	if !p.RetailPrice.IsZero() {
		in.RegularPrice = p.RetailPrice.String()
	}
	if !p.SalePrice.IsZero() {
		in.SalePrice = p.SalePrice.String()
	}

	sp, err := r.storefront.CreateProduct(ctx, in)
	if err != nil {
		return errOutcome(models.SourceStorefront, TierNone, err)
	}

	p.StorefrontID = sp.ID
	r.stamp(p, models.ActionCreated, models.SourceStorefront, "")
	if err := r.store.Save(ctx, p); err != nil {
		return errOutcome(models.SourceStorefront, TierNone, err)
	}
	return Outcome{Action: models.ActionCreated, Source: models.SourceStorefront}
}

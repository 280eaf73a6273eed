package sync

import (
	"context"

	"stock-sync/feature/catalog"
	"stock-sync/feature/catalog/models"
	"stock-sync/feature/erp"
	"stock-sync/feature/inventory"
	"stock-sync/feature/storefront"
)

// Resolver locates the canonical product addressed by a source-native record.
// Resolution is a pure read: it never mutates the store. Each tier queries a
// disjoint subset, so a record resolves to at most one canonical identity.
type Resolver struct {
	store *catalog.Store
}

// NewResolver creates a resolver over the canonical store.
func NewResolver(store *catalog.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveErp matches an ERP item. The internal id is tried against all
// records; code and barcode only against records not yet linked to the ERP,
// so a stale code can never shadow an internal-id match.
func (r *Resolver) ResolveErp(ctx context.Context, it erp.Item) (*models.CanonicalProduct, MatchTier, error) {
	if it.InternalID != "" {
		p, err := r.store.FindByErpInternalID(ctx, it.InternalID)
		if err != nil {
			return nil, TierNone, err
		}
		if p != nil {
			return p, TierInternalID, nil
		}
	}

	if it.Code != "" {
		p, err := r.store.FindByErpCodeUnlinked(ctx, it.Code)
		if err != nil {
			return nil, TierNone, err
		}
		if p != nil {
			return p, TierErpCode, nil
		}
	}

	if it.Barcode != "" {
		p, err := r.store.FindByBarcodeUnlinked(ctx, it.Barcode)
		if err != nil {
			return nil, TierNone, err
		}
		if p != nil {
			return p, TierBarcode, nil
		}
	}

	return nil, TierNone, nil
}

// ResolveInventory matches a ledger record by record id, then by SKU.
func (r *Resolver) ResolveInventory(ctx context.Context, rec inventory.Record) (*models.CanonicalProduct, MatchTier, error) {
	if rec.ID != 0 {
		p, err := r.store.FindByInventoryRecordID(ctx, rec.ID)
		if err != nil {
			return nil, TierNone, err
		}
		if p != nil {
			return p, TierInventoryID, nil
		}
	}

	if rec.SKU != "" {
		p, err := r.store.FindBySKU(ctx, rec.SKU)
		if err != nil {
			return nil, TierNone, err
		}
		if p != nil {
			return p, TierSKU, nil
		}
	}

	return nil, TierNone, nil
}

// ResolveStorefront matches a storefront product by storefront id, then by
// SKU. A miss never triggers creation; storefront data may only update.
func (r *Resolver) ResolveStorefront(ctx context.Context, sp storefront.Product) (*models.CanonicalProduct, MatchTier, error) {
	if sp.ID != 0 {
		p, err := r.store.FindByStorefrontID(ctx, sp.ID)
		if err != nil {
			return nil, TierNone, err
		}
		if p != nil {
			return p, TierStorefrontID, nil
		}
	}

	if sp.SKU != "" {
		p, err := r.store.FindBySKU(ctx, sp.SKU)
		if err != nil {
			return nil, TierNone, err
		}
		if p != nil {
			return p, TierSKU, nil
		}
	}

	return nil, TierNone, nil
}

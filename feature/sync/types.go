package sync

import (
	"context"

	"stock-sync/feature/catalog/models"
	"stock-sync/feature/erp"
	"stock-sync/feature/inventory"
	"stock-sync/feature/storefront"
)

// MatchTier names the identifier that resolved a source record to a
// canonical product. Tiers are evaluated in declaration order per source;
// the first hit wins.
type MatchTier string

const (
	TierNone         MatchTier = ""
	TierInternalID   MatchTier = "erp_internal_id"
	TierErpCode      MatchTier = "erp_code"
	TierBarcode      MatchTier = "barcode"
	TierStorefrontID MatchTier = "storefront_id"
	TierInventoryID  MatchTier = "inventory_record_id"
	TierSKU          MatchTier = "sku"
)

// Outcome is the per-record reconciliation result consumed by the
// orchestrator to update run counters. Err is set only for ActionError.
type Outcome struct {
	Action models.SyncAction
	Source models.SyncSource
	Tier   MatchTier
	Detail string
	Err    error
}

func errOutcome(source models.SyncSource, tier MatchTier, err error) Outcome {
	return Outcome{Action: models.ActionError, Source: source, Tier: tier, Detail: err.Error(), Err: err}
}

// ErpSource lists ERP items page by page.
type ErpSource interface {
	ListItems(ctx context.Context, page int) ([]erp.Item, error)
	PageSize() int
}

// StorefrontAPI is the storefront catalog surface the pipeline needs.
type StorefrontAPI interface {
	GetProduct(ctx context.Context, id int64) (*storefront.Product, error)
	FindBySKU(ctx context.Context, sku string) (*storefront.Product, error)
	CreateProduct(ctx context.Context, in storefront.NewProduct) (*storefront.Product, error)
	UpdateProduct(ctx context.Context, id int64, in storefront.ProductUpdate) (*storefront.Product, error)
}

// InventoryAPI is the inventory-ledger surface the pipeline needs.
type InventoryAPI interface {
	ListRecords(ctx context.Context, page int) ([]inventory.Record, error)
	Batch(ctx context.Context, req inventory.BatchRequest) (*inventory.BatchResponse, error)
	PageSize() int
	LocationID() int64
}

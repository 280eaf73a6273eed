package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SyncAction is the closed set of per-record reconciliation outcomes.
type SyncAction string

const (
	ActionCreated         SyncAction = "created"
	ActionUpdated         SyncAction = "updated"
	ActionSkipped         SyncAction = "skipped"
	ActionSkippedConflict SyncAction = "skipped_conflict"
	ActionError           SyncAction = "error"
)

// SyncSource tags which external system produced a record.
type SyncSource string

const (
	SourceErp        SyncSource = "erp"
	SourceStorefront SyncSource = "storefront"
	SourceInventory  SyncSource = "inventory"
)

// RunStatus is the lifecycle state of a sync run.
type RunStatus string

const (
	RunStatusRunning             RunStatus = "running"
	RunStatusCompleted           RunStatus = "completed"
	RunStatusCompletedWithErrors RunStatus = "completed_with_errors"
	RunStatusFailed              RunStatus = "failed"
)

// CanonicalProduct is the reconciled record, one per physical product per store.
// It is addressable by every external identifier and is never deleted by the
// sync pipeline, only created or updated.
type CanonicalProduct struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Identifiers. ErpInternalID is the highest-trust key; SKU is the
	// universal fallback and, when non-empty, unique across the store.
	ErpInternalID     string `gorm:"column:erp_internal_id;size:64;index" json:"erpInternalId"`
	ErpCode           string `gorm:"column:erp_code;size:64;index" json:"erpCode"`
	ErpBarcode        string `gorm:"column:erp_barcode;size:64;index" json:"erpBarcode"`
	StorefrontID      int64  `gorm:"column:storefront_id;index" json:"storefrontId"`
	InventoryRecordID int64  `gorm:"column:inventory_record_id;index" json:"inventoryRecordId"`
	SKU               string `gorm:"column:sku;size:128;index" json:"sku"`

	// Quantities. ErpQuantity is the authoritative stock figure written by the
	// ERP phase; InventoryQuantity is the last quantity confirmed in the ledger,
	// written only by the inventory phases. They must never overwrite each other.
	ErpQuantity       decimal.Decimal `gorm:"type:decimal(18,4)" json:"erpQuantity"`
	InventoryQuantity decimal.Decimal `gorm:"type:decimal(18,4)" json:"inventoryQuantity"`

	// Commercial attributes, sourced from the ERP.
	Name           string          `gorm:"size:255" json:"name"`
	Category       string          `gorm:"size:128" json:"category"`
	Unit           string          `gorm:"size:32" json:"unit"`
	VatClass       string          `gorm:"size:32" json:"vatClass"`
	RetailPrice    decimal.Decimal `gorm:"type:decimal(18,4)" json:"retailPrice"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(18,4)" json:"wholesalePrice"`
	SalePrice      decimal.Decimal `gorm:"type:decimal(18,4)" json:"salePrice"`
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(18,4)" json:"purchasePrice"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,4)" json:"discount"`

	// Sync metadata.
	LastSyncedAt   *time.Time `json:"lastSyncedAt"`
	LastSyncAction SyncAction `gorm:"size:32" json:"lastSyncAction"`
	LastSyncSource SyncSource `gorm:"size:32" json:"lastSyncSource"`
	LastSyncDetail string     `gorm:"size:512" json:"lastSyncDetail"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName sets the canonical products table name.
func (CanonicalProduct) TableName() string {
	return "canonical_products"
}

// SyncRun is the persisted audit record of one pipeline execution.
type SyncRun struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Status      RunStatus  `gorm:"size:32;index" json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt"`
	DurationMs  int64      `json:"durationMs"`
	Total       int        `json:"total"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Skipped     int        `json:"skipped"`
	Errors      int        `json:"errors"`
	Detail      string     `gorm:"size:1024" json:"detail"`
	TriggeredBy string     `gorm:"size:64" json:"triggeredBy"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName sets the sync runs table name.
func (SyncRun) TableName() string {
	return "sync_runs"
}

package inventory

import (
	"stock-sync/core/utils"

	"github.com/shopspring/decimal"
)

// Record is one per-location inventory-ledger entry.
type Record struct {
	ID         int64  `json:"id"`
	ProductID  int64  `json:"product_id"`
	LocationID int64  `json:"location_id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Stock      string `json:"stock_quantity"`
}

// Quantity returns the ledger stock figure as a decimal.
func (r Record) Quantity() decimal.Decimal {
	return utils.ToDecimal(r.Stock)
}

// RecordInput is the payload for creating or updating a ledger record.
// ID is zero for creates.
type RecordInput struct {
	ID         int64  `json:"id,omitempty"`
	ProductID  int64  `json:"product_id,omitempty"`
	LocationID int64  `json:"location_id,omitempty"`
	SKU        string `json:"sku,omitempty"`
	Name       string `json:"name,omitempty"`
	Stock      string `json:"stock_quantity,omitempty"`
}

// BatchRequest carries up to the API's batch cap of creates and updates.
type BatchRequest struct {
	Create []RecordInput `json:"create,omitempty"`
	Update []RecordInput `json:"update,omitempty"`
}

// BatchResponse mirrors the request arrays item for item: every result
// carries either a ledger record id or an error object.
type BatchResponse struct {
	Create []BatchResult `json:"create"`
	Update []BatchResult `json:"update"`
}

// BatchResult is one item-addressable outcome of a batch call.
type BatchResult struct {
	ID    int64     `json:"id"`
	Error *APIError `json:"error,omitempty"`
}

// APIError is the error object attached to a failed batch item.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) String() string {
	if e == nil {
		return ""
	}
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

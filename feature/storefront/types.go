package storefront

import (
	"stock-sync/core/utils"

	"github.com/shopspring/decimal"
)

// Product is a storefront catalog product. Prices travel as strings on the
// wire, matching the storefront's own representation.
type Product struct {
	ID           int64  `json:"id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	RegularPrice string `json:"regular_price"`
	SalePrice    string `json:"sale_price"`
}

// Price returns the regular price as a decimal.
func (p Product) Price() decimal.Decimal {
	return utils.ToDecimal(p.RegularPrice)
}

// NewProduct is the payload for creating a storefront product. Created
// products default to a non-visible draft state pending review.
type NewProduct struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Status       string `json:"status,omitempty"`
	RegularPrice string `json:"regular_price,omitempty"`
	SalePrice    string `json:"sale_price,omitempty"`
}

// ProductUpdate is a partial update payload; zero-valued fields are omitted.
type ProductUpdate struct {
	Name         string `json:"name,omitempty"`
	RegularPrice string `json:"regular_price,omitempty"`
	SalePrice    string `json:"sale_price,omitempty"`
}

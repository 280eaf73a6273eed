package erp

import (
	"strings"

	"stock-sync/core/utils"

	"github.com/shopspring/decimal"
)

// Column names of the item list response. The ERP reports its schema as a
// field-name array per page; these are the columns the projection consumes.
const (
	fieldInternalID = "mtrl"
	fieldCode       = "code"
	fieldBarcode    = "code1"
	fieldName       = "name"
	fieldCategory   = "category"
	fieldUnit       = "unit"
	fieldVat        = "vat"
	fieldRetail     = "pricer"
	fieldWholesale  = "pricew"
	fieldSale       = "prices"
	fieldPurchase   = "pricep"
	fieldDiscount   = "discount"
	fieldQuantity   = "qty"
)

// Item is the typed projection of one ERP row. Business logic never touches
// raw field names; everything is resolved here, right after decoding.
type Item struct {
	InternalID string
	Code       string
	Barcode    string
	Name       string
	Category   string
	Unit       string
	VatClass   string

	RetailPrice    decimal.Decimal
	WholesalePrice decimal.Decimal
	SalePrice      decimal.Decimal
	PurchasePrice  decimal.Decimal
	Discount       decimal.Decimal

	Quantity decimal.Decimal
}

// SKU derives the universal fallback key: the ERP code, or the barcode when
// no code is present.
func (it Item) SKU() string {
	if it.Code != "" {
		return it.Code
	}
	return it.Barcode
}

// rowProjector resolves the field-name array once per page and zips each row
// array into an Item.
type rowProjector struct {
	idx map[string]int
}

func newRowProjector(fields []string) *rowProjector {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[strings.ToLower(strings.TrimSpace(f))] = i
	}
	return &rowProjector{idx: idx}
}

func (p *rowProjector) cell(row []any, field string) any {
	i, ok := p.idx[field]
	if !ok || i >= len(row) {
		return nil
	}
	return row[i]
}

func (p *rowProjector) str(row []any, field string) string {
	return strings.TrimSpace(utils.ToString(p.cell(row, field)))
}

// Item projects one row array into the typed record.
func (p *rowProjector) Item(row []any) Item {
	return Item{
		InternalID:     p.str(row, fieldInternalID),
		Code:           p.str(row, fieldCode),
		Barcode:        p.str(row, fieldBarcode),
		Name:           p.str(row, fieldName),
		Category:       p.str(row, fieldCategory),
		Unit:           p.str(row, fieldUnit),
		VatClass:       p.str(row, fieldVat),
		RetailPrice:    utils.ToDecimal(p.cell(row, fieldRetail)),
		WholesalePrice: utils.ToDecimal(p.cell(row, fieldWholesale)),
		SalePrice:      utils.ToDecimal(p.cell(row, fieldSale)),
		PurchasePrice:  utils.ToDecimal(p.cell(row, fieldPurchase)),
		Discount:       utils.ToDecimal(p.cell(row, fieldDiscount)),
		Quantity:       utils.ToDecimal(p.cell(row, fieldQuantity)),
	}
}

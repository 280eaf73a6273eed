package erp

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRowProjection(t *testing.T) {
	fields := []string{"MTRL", "CODE", "CODE1", "NAME", "QTY", "PRICER"}
	p := newRowProjector(fields)

	item := p.Item([]any{"M100", "C-1", "520100", " Widget ", "5", "12,50"})

	assert.Equal(t, "M100", item.InternalID)
	assert.Equal(t, "C-1", item.Code)
	assert.Equal(t, "520100", item.Barcode)
	assert.Equal(t, "Widget", item.Name)
	assert.True(t, decimal.NewFromInt(5).Equal(item.Quantity))
	assert.True(t, decimal.NewFromFloat(12.5).Equal(item.RetailPrice))
}

func TestRowProjectionMissingColumns(t *testing.T) {
	p := newRowProjector([]string{"code", "name"})

	item := p.Item([]any{"C-2", "Gadget"})

	assert.Empty(t, item.InternalID)
	assert.Equal(t, "C-2", item.Code)
	assert.True(t, item.Quantity.IsZero())
	assert.True(t, item.RetailPrice.IsZero())
}

func TestRowProjectionShortRow(t *testing.T) {
	p := newRowProjector([]string{"code", "name", "qty"})

	// Row shorter than the schema: absent cells read as zero values.
	item := p.Item([]any{"C-3"})

	assert.Equal(t, "C-3", item.Code)
	assert.Empty(t, item.Name)
	assert.True(t, item.Quantity.IsZero())
}

func TestItemSKUFallback(t *testing.T) {
	assert.Equal(t, "C-1", Item{Code: "C-1", Barcode: "B-1"}.SKU())
	assert.Equal(t, "B-1", Item{Barcode: "B-1"}.SKU())
	assert.Empty(t, Item{}.SKU())
}

package sync

import (
	"context"
	"fmt"
	"testing"

	"stock-sync/core/database"
	"stock-sync/feature/catalog"
	"stock-sync/feature/erp"
	"stock-sync/feature/inventory"
	"stock-sync/feature/storefront"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	store := catalog.NewStore(db)
	require.NoError(t, store.Migrate())
	return store
}

// fakeErp serves canned pages. When fullPages is set every page is exactly
// pageSize long, simulating a source that never sends a short page.
type fakeErp struct {
	pages     [][]erp.Item
	pageSize  int
	fullPages bool
	err       error
	calls     int
}

func (f *fakeErp) ListItems(ctx context.Context, page int) ([]erp.Item, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.fullPages {
		items := make([]erp.Item, f.pageSize)
		for i := range items {
			items[i] = erp.Item{InternalID: fmt.Sprintf("M%d-%d", page, i), Code: fmt.Sprintf("C%d-%d", page, i)}
		}
		return items, nil
	}
	if page > len(f.pages) {
		return nil, nil
	}
	return f.pages[page-1], nil
}

func (f *fakeErp) PageSize() int { return f.pageSize }

type fakeStorefront struct {
	bySKU    map[string]*storefront.Product
	byID     map[int64]*storefront.Product
	created  []storefront.NewProduct
	nextID   int64
	findErr  error
	getErr   error
	creatErr error
}

func newFakeStorefront() *fakeStorefront {
	return &fakeStorefront{
		bySKU:  map[string]*storefront.Product{},
		byID:   map[int64]*storefront.Product{},
		nextID: 1000,
	}
}

func (f *fakeStorefront) GetProduct(ctx context.Context, id int64) (*storefront.Product, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byID[id], nil
}

func (f *fakeStorefront) FindBySKU(ctx context.Context, sku string) (*storefront.Product, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.bySKU[sku], nil
}

func (f *fakeStorefront) CreateProduct(ctx context.Context, in storefront.NewProduct) (*storefront.Product, error) {
	if f.creatErr != nil {
		return nil, f.creatErr
	}
	f.created = append(f.created, in)
	f.nextID++
	p := &storefront.Product{ID: f.nextID, SKU: in.SKU, Name: in.Name, Status: "draft"}
	f.bySKU[in.SKU] = p
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeStorefront) UpdateProduct(ctx context.Context, id int64, in storefront.ProductUpdate) (*storefront.Product, error) {
	return f.byID[id], nil
}

// fakeInventory answers list pages from records and routes batch calls
// through batchFn so tests can script partial failures.
type fakeInventory struct {
	records  []inventory.Record
	pageSize int
	listErr  error
	batchFn  func(req inventory.BatchRequest) (*inventory.BatchResponse, error)
	batches  []inventory.BatchRequest
	nextID   int64
}

func (f *fakeInventory) ListRecords(ctx context.Context, page int) ([]inventory.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	start := (page - 1) * f.PageSize()
	if start >= len(f.records) {
		return nil, nil
	}
	end := start + f.PageSize()
	if end > len(f.records) {
		end = len(f.records)
	}
	return f.records[start:end], nil
}

func (f *fakeInventory) Batch(ctx context.Context, req inventory.BatchRequest) (*inventory.BatchResponse, error) {
	f.batches = append(f.batches, req)
	if f.batchFn != nil {
		return f.batchFn(req)
	}
	resp := &inventory.BatchResponse{}
	for range req.Create {
		f.nextID++
		resp.Create = append(resp.Create, inventory.BatchResult{ID: f.nextID})
	}
	for _, in := range req.Update {
		resp.Update = append(resp.Update, inventory.BatchResult{ID: in.ID})
	}
	return resp, nil
}

func (f *fakeInventory) PageSize() int {
	if f.pageSize <= 0 {
		return 100
	}
	return f.pageSize
}

func (f *fakeInventory) LocationID() int64 { return 3 }

func testLogger() *zap.Logger { return zap.NewNop() }

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-sync/feature/catalog/models"

	"gorm.io/gorm"
)

// ErrSKUConflict is returned when a mutation would duplicate a non-empty SKU
// onto a different canonical product.
var ErrSKUConflict = errors.New("sku already owned by another canonical product")

// ErrInternalIDConflict is returned when a create would duplicate an ERP
// internal id that another canonical product already carries.
var ErrInternalIDConflict = errors.New("erp internal id already owned by another canonical product")

// Store persists canonical products and sync runs.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the canonical tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.CanonicalProduct{}, &models.SyncRun{})
}

// DB exposes the underlying handle for read-only queries in handlers.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) findOne(ctx context.Context, query string, args ...any) (*models.CanonicalProduct, error) {
	var p models.CanonicalProduct
	err := s.db.WithContext(ctx).Where(query, args...).Take(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindByErpInternalID matches against all canonical records regardless of state.
func (s *Store) FindByErpInternalID(ctx context.Context, internalID string) (*models.CanonicalProduct, error) {
	if internalID == "" {
		return nil, nil
	}
	return s.findOne(ctx, "erp_internal_id = ?", internalID)
}

// FindByErpCodeUnlinked matches by ERP code among records that have no ERP
// internal id yet. Records already linked to the ERP are only addressable by
// their internal id.
func (s *Store) FindByErpCodeUnlinked(ctx context.Context, code string) (*models.CanonicalProduct, error) {
	if code == "" {
		return nil, nil
	}
	return s.findOne(ctx, "erp_code = ? AND erp_internal_id = ''", code)
}

// FindByBarcodeUnlinked matches by barcode with the same restriction as
// FindByErpCodeUnlinked.
func (s *Store) FindByBarcodeUnlinked(ctx context.Context, barcode string) (*models.CanonicalProduct, error) {
	if barcode == "" {
		return nil, nil
	}
	return s.findOne(ctx, "erp_barcode = ? AND erp_internal_id = ''", barcode)
}

// FindByStorefrontID matches by the storefront product id.
func (s *Store) FindByStorefrontID(ctx context.Context, id int64) (*models.CanonicalProduct, error) {
	if id == 0 {
		return nil, nil
	}
	return s.findOne(ctx, "storefront_id = ?", id)
}

// FindByInventoryRecordID matches by the inventory-ledger record id.
func (s *Store) FindByInventoryRecordID(ctx context.Context, id int64) (*models.CanonicalProduct, error) {
	if id == 0 {
		return nil, nil
	}
	return s.findOne(ctx, "inventory_record_id = ?", id)
}

// FindBySKU matches by the derived SKU.
func (s *Store) FindBySKU(ctx context.Context, sku string) (*models.CanonicalProduct, error) {
	if sku == "" {
		return nil, nil
	}
	return s.findOne(ctx, "sku = ?", sku)
}

// SKUOwner returns the id of the canonical product owning the given SKU, or 0.
func (s *Store) SKUOwner(ctx context.Context, sku string) (uint, error) {
	if sku == "" {
		return 0, nil
	}
	p, err := s.FindBySKU(ctx, sku)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, nil
	}
	return p.ID, nil
}

// Create inserts a new canonical product after verifying the uniqueness
// invariants on SKU and ERP internal id.
func (s *Store) Create(ctx context.Context, p *models.CanonicalProduct) error {
	if p.SKU != "" {
		owner, err := s.SKUOwner(ctx, p.SKU)
		if err != nil {
			return err
		}
		if owner != 0 {
			return fmt.Errorf("%w: sku=%s owner=%d", ErrSKUConflict, p.SKU, owner)
		}
	}
	if p.ErpInternalID != "" {
		existing, err := s.FindByErpInternalID(ctx, p.ErpInternalID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: internal_id=%s owner=%d", ErrInternalIDConflict, p.ErpInternalID, existing.ID)
		}
	}
	return s.db.WithContext(ctx).Create(p).Error
}

// Save persists mutations to an existing canonical product. A non-empty SKU
// owned by a different record is refused with ErrSKUConflict.
func (s *Store) Save(ctx context.Context, p *models.CanonicalProduct) error {
	if p.SKU != "" {
		owner, err := s.SKUOwner(ctx, p.SKU)
		if err != nil {
			return err
		}
		if owner != 0 && owner != p.ID {
			return fmt.Errorf("%w: sku=%s owner=%d", ErrSKUConflict, p.SKU, owner)
		}
	}
	return s.db.WithContext(ctx).Save(p).Error
}

// ListMissingStorefront returns products that carry a SKU but are not linked
// to a storefront product yet.
func (s *Store) ListMissingStorefront(ctx context.Context) ([]models.CanonicalProduct, error) {
	var out []models.CanonicalProduct
	err := s.db.WithContext(ctx).
		Where("sku <> '' AND storefront_id = 0").
		Order("id").
		Find(&out).Error
	return out, err
}

// ListMissingInventory returns products that carry a SKU but have no
// inventory-ledger record yet.
func (s *Store) ListMissingInventory(ctx context.Context) ([]models.CanonicalProduct, error) {
	var out []models.CanonicalProduct
	err := s.db.WithContext(ctx).
		Where("sku <> '' AND inventory_record_id = 0").
		Order("id").
		Find(&out).Error
	return out, err
}

// ListQuantityDrift returns products whose ledger quantity no longer matches
// the authoritative ERP quantity. Only ERP-linked records qualify: an
// inventory-origin record carries no ERP quantity, and pushing its zero value
// into the ledger would wipe the confirmed stock.
func (s *Store) ListQuantityDrift(ctx context.Context) ([]models.CanonicalProduct, error) {
	var out []models.CanonicalProduct
	err := s.db.WithContext(ctx).
		Where("inventory_record_id <> 0 AND erp_internal_id <> '' AND inventory_quantity <> erp_quantity").
		Order("id").
		Find(&out).Error
	return out, err
}

// CreateRun inserts a new running sync run row.
func (s *Store) CreateRun(ctx context.Context, triggeredBy string) (*models.SyncRun, error) {
	run := &models.SyncRun{
		Status:      models.RunStatusRunning,
		StartedAt:   time.Now(),
		TriggeredBy: triggeredBy,
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// SaveRun persists the current counters of a run. It is called incrementally
// after each applied batch so a crash does not lose progress.
func (s *Store) SaveRun(ctx context.Context, run *models.SyncRun) error {
	return s.db.WithContext(ctx).Save(run).Error
}

// GetRun fetches a single run by id, or nil when absent.
func (s *Store) GetRun(ctx context.Context, id uint) (*models.SyncRun, error) {
	var run models.SyncRun
	err := s.db.WithContext(ctx).Take(&run, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.SyncRun
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

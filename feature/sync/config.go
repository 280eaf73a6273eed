package sync

// Config holds configuration for the reconciliation pipeline.
type Config struct {
	// Enabled toggles the sync feature's HTTP surface.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// BatchSize caps the number of items per inventory batch call. The ledger
	// API rejects oversized payloads.
	BatchSize int `mapstructure:"batch_size" default:"50"`
	// BatchDelayMs is the pause between consecutive batch submissions.
	BatchDelayMs int `mapstructure:"batch_delay_ms" default:"500"`
	// StorefrontWorkers bounds concurrent storefront lookups during the
	// match phase.
	StorefrontWorkers int `mapstructure:"storefront_workers" default:"10"`
	// MaxPages is the hard safety ceiling on pages fetched from any source.
	MaxPages int `mapstructure:"max_pages" default:"500"`
	// CreateStorefront controls whether unmatched canonical products are
	// created in the storefront as drafts.
	CreateStorefront bool `mapstructure:"create_storefront" default:"true"`
	// CreateInventory controls whether ledger records are created for
	// canonical products missing one.
	CreateInventory bool `mapstructure:"create_inventory" default:"true"`
	// ArchiveReports uploads a JSON report of every finished run to object
	// storage.
	ArchiveReports bool `mapstructure:"archive_reports" default:"false"`
}

func (c Config) batchSize() int {
	if c.BatchSize <= 0 || c.BatchSize > 50 {
		return 50
	}
	return c.BatchSize
}

func (c Config) workers() int {
	if c.StorefrontWorkers <= 0 {
		return 10
	}
	return c.StorefrontWorkers
}

func (c Config) maxPages() int {
	if c.MaxPages <= 0 {
		return 500
	}
	return c.MaxPages
}

package inventory

// Config holds configuration for the inventory-ledger connector.
type Config struct {
	// BaseURL is the inventory API root.
	BaseURL string `mapstructure:"base_url" default:""`
	// ConsumerKey is the API consumer key.
	ConsumerKey string `mapstructure:"consumer_key" default:""`
	// ConsumerSecret is the API consumer secret.
	ConsumerSecret string `mapstructure:"consumer_secret" default:""`
	// LocationID is the ledger location records are reconciled against.
	LocationID int64 `mapstructure:"location_id" default:"0"`
	// PageSize is the number of records requested per list page.
	PageSize int `mapstructure:"page_size" default:"100"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

package storefront

// Config holds configuration for the storefront connector.
type Config struct {
	// BaseURL is the storefront REST API root (e.g. https://shop.example/wp-json/wc/v3).
	BaseURL string `mapstructure:"base_url" default:""`
	// ConsumerKey is the API consumer key.
	ConsumerKey string `mapstructure:"consumer_key" default:""`
	// ConsumerSecret is the API consumer secret.
	ConsumerSecret string `mapstructure:"consumer_secret" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

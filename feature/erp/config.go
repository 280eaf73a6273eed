package erp

// Config holds configuration for the ERP connector.
type Config struct {
	// BaseURL is the ERP service endpoint.
	BaseURL string `mapstructure:"base_url" default:""`
	// AppID identifies the registered application.
	AppID string `mapstructure:"app_id" default:""`
	// Token is the authentication token sent with every request.
	Token string `mapstructure:"token" default:""`
	// Filter is the server-side filter expression applied to the item list.
	Filter string `mapstructure:"filter" default:""`
	// Encoding is the character encoding of response payloads. Legacy
	// installations answer in a single-byte Greek code page.
	Encoding string `mapstructure:"encoding" default:"windows-1253"`
	// PageSize is the number of rows requested per page.
	PageSize int `mapstructure:"page_size" default:"500"`
	// RequestsPerMinute is the per-minute request budget. When exhausted the
	// caller blocks until the window resets.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"30"`
	// RequestsPerHour is the per-hour request budget. Exhaustion fails the run.
	RequestsPerHour int `mapstructure:"requests_per_hour" default:"600"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}

// Package config provides configuration management for the stock-sync service.
//
// It utilizes Viper for loading configuration from environment variables and
// a local .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: canonical-store MySQL connection details
//   - Storage: S3/MinIO credentials for run-report archives
//   - Log: logging level and format
//   - Erp / Storefront / Inventory: connector credentials and endpoints
//   - Sync: pipeline tuning (batch size, worker count, page ceiling)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Erp.BaseURL)
package config

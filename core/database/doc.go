// Package database handles connections to the canonical-store database.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration. A sqlite driver is
// available for tests and local experimentation.
//
// # Connect
//
// The generic Connect function establishes a connection to the database and applies
// sane pool limits and I/O timeouts. Schema migration for the canonical tables is
// performed by the catalog feature via AutoMigrate.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database

// Package models defines the persisted canonical product and sync run records.
//
// CanonicalProduct is the single reconciled entity the pipeline maintains per
// physical product. SyncRun is the audit row written once per pipeline
// execution. Both are mapped with GORM.
package models

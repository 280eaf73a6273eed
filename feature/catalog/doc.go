// Package catalog persists the canonical product mapping and the sync run log.
//
// The Store is the single write path for canonical records. It enforces the two
// uniqueness invariants the reconciliation core depends on: a non-empty SKU
// belongs to at most one canonical product, and an ERP internal id belongs to
// at most one canonical product. Lookups return (nil, nil) when no record
// matches so callers can distinguish "not found" from persistence failures.
package catalog

// Package storefront implements the connector for the storefront catalog API.
//
// Products are addressed by numeric id or located by SKU query. Creation
// always lands in a non-visible draft state pending review. The connector is
// a narrow wrapper: matching and reconciliation decisions live in the sync
// feature.
package storefront

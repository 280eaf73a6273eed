// Package sync is the reconciliation pipeline. One run pulls the full item
// list from the ERP, links or creates storefront products for canonical
// records that lack one, and pushes authoritative quantities into the
// inventory ledger through bounded batch calls.
//
// The pipeline is built from four parts: the Resolver locates the canonical
// product a source record addresses, the Reconciler decides and applies one
// action per record, the Dispatcher chunks pending ledger writes into batch
// calls, and the Orchestrator sequences the phases and owns the persisted
// run row.
package sync

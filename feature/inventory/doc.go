// Package inventory talks to the per-location inventory ledger.
//
// Records are listed page by page and written back through a bounded batch
// endpoint whose response addresses every submitted item individually, so a
// single rejected record never fails the batch call itself.
package inventory

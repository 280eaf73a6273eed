// Package erp implements the connector for the ERP source of truth.
//
// The ERP answers list requests with a columnar payload: a field-name array
// plus row arrays that are zipped into named records once per page. Legacy
// installations respond in a single-byte Greek code page which is decoded to
// UTF-8 before JSON parsing. Rows are projected into the typed Item record
// immediately after decoding so no raw field names leak into business logic.
//
// The client enforces both a per-minute and a per-hour request budget: when
// the minute budget is spent the caller blocks until the window resets, while
// hourly exhaustion fails the current run.
package erp

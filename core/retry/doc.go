// Package retry provides a context-aware retry helper with exponential backoff.
//
// Connector calls that fail transiently (network drops, timeouts) are retried
// up to a fixed attempt cap. Failures that will not improve with retrying —
// validation rejections, authentication errors, SKU conflicts — are wrapped
// with Permanent so the helper gives up immediately.
package retry

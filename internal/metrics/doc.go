// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Payloads published per feed and feed fetch failures
//   - Store errors
//   - Current subscriber count
//   - Payloads dropped to lagging subscribers
package metrics

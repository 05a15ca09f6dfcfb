// Package model defines the shared data types for the chainfeed pipeline.
//
// Conventions:
//   - Timestamps on the wire: int64 seconds since Unix epoch
//   - Sample timestamps in process: time.Time in UTC
//   - A Payload carries one feed's observation; the other field stays zero
package model

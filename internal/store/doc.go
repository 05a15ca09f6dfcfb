// Package store implements the persistence gateway for feed samples.
//
// Two tables back it:
//   - blocks(height UNIQUE, timestamp): at most one row per height, ever.
//     Re-observing a height is a no-op, not an error.
//   - bitcoin_prices(price, timestamp): append-only, one row per poll.
//
// The unique constraint on blocks.height is the source of truth for
// idempotence; the existence pre-check only skips the common duplicate case.
package store

// Package database provides connection pool management for PostgreSQL.
//
// The daemon keeps all durable state in one Postgres database:
//   - blocks: one row per observed block height (unique)
//   - bitcoin_prices: one row per successful price poll (append-only)
package database

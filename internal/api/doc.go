// Package api provides the source adapters for the two external feeds.
//
// Feeds:
//   - Height: https://blockchain.info/latestblock
//   - Price: https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd
//
// Each fetch is a single attempt with no retries; a failed tick is simply
// skipped and the next tick tries again.
package api

// Package poller implements the fixed-interval poll loop.
//
// On each tick the poller:
//   - fetches a height sample, publishes it, records it
//   - fetches a price sample, publishes it, records it
//
// The two sequences are independent: a failure in either is logged and the
// tick completes. The loop only stops on shutdown, and a tick already in
// progress finishes before the loop exits.
package poller

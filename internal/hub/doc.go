// Package hub implements the in-process broadcast hub.
//
// One producer publishes payloads; any number of subscriptions receive them.
// Each subscription owns a fixed-capacity ring: when a subscriber reads
// slower than the publish rate, its oldest undelivered payloads are dropped
// rather than ever blocking the producer. Subscriptions see only payloads
// published after they were created.
package hub

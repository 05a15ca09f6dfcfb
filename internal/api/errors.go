package api

import (
	"errors"
	"fmt"
)

// ErrMissingTime marks a height response without a block time. The sample
// is discarded; no backfill exists, the next tick re-observes the chain tip.
var ErrMissingTime = errors.New("height response missing time field")

// ErrMissingPrice marks a price response without the bitcoin.usd quote.
// Zero is the "absent" sentinel on the wire, so a missing quote must never
// pass through as a zero-price sample.
var ErrMissingPrice = errors.New("price response missing bitcoin.usd field")

// TransportError means the request could not complete: dial/read failure,
// or a non-success status from the feed. StatusCode is 0 when no response
// was received at all.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feed %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("feed %s unreachable: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means the feed answered but the response shape was unexpected.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

package store

import (
	"errors"
	"time"
)

// ErrInvalidTimestamp marks a unix timestamp outside the representable
// instant range. The record operation fails; the caller drops the sample.
var ErrInvalidTimestamp = errors.New("timestamp outside representable range")

// Bounds of the ISO-8601 four-digit-year range, in unix seconds.
const (
	minUnixSeconds = -62135596800 // 0001-01-01T00:00:00Z
	maxUnixSeconds = 253402300799 // 9999-12-31T23:59:59Z
)

// formatTimestamp renders unix seconds as an ISO-8601 UTC string with an
// explicit +00:00 offset, the form already present in the blocks table.
func formatTimestamp(ts int64) (string, error) {
	if ts < minUnixSeconds || ts > maxUnixSeconds {
		return "", ErrInvalidTimestamp
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02T15:04:05-07:00"), nil
}

package model

import "time"

// HeightSample is one observation from the blockchain height feed.
type HeightSample struct {
	Height     int32
	ObservedAt time.Time // UTC, from the feed's own block time
}

// PriceSample is one observation from the spot price feed.
type PriceSample struct {
	Price      float64
	ObservedAt time.Time // UTC, assigned locally (the feed carries no timestamp)
}

// Payload is the broadcast record pushed to subscribers. Both feeds share
// this shape but publish independent events: a height payload carries
// Price=0 and a price payload carries Height=0.
type Payload struct {
	Height    int32   `json:"height"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // Unix seconds
}

// HeightPayload builds the broadcast record for a height sample.
func HeightPayload(s HeightSample) Payload {
	return Payload{
		Height:    s.Height,
		Timestamp: s.ObservedAt.Unix(),
	}
}

// PricePayload builds the broadcast record for a price sample.
func PricePayload(s PriceSample) Payload {
	return Payload{
		Price:     s.Price,
		Timestamp: s.ObservedAt.Unix(),
	}
}

package api

import (
	"context"
	"time"

	"github.com/rickgao/chainfeed/internal/model"
)

// latestBlockWire is the height feed's response shape.
// Time is a pointer: the feed occasionally omits it, and a height without
// its block time cannot be recorded.
type latestBlockWire struct {
	Height int32  `json:"height"`
	Time   *int64 `json:"time"` // Unix seconds
}

// spotPriceWire is the price feed's response shape.
// USD is a pointer for the same reason the height feed's Time is: a response
// missing the quote must decode as absent, not as price zero.
type spotPriceWire struct {
	Bitcoin struct {
		USD *float64 `json:"usd"`
	} `json:"bitcoin"`
}

// FetchHeight fetches the current chain tip from the height feed.
func (c *Client) FetchHeight(ctx context.Context) (model.HeightSample, error) {
	var wire latestBlockWire
	if err := c.getJSON(ctx, c.heightURL, &wire); err != nil {
		return model.HeightSample{}, err
	}

	if wire.Time == nil {
		return model.HeightSample{}, &DecodeError{URL: c.heightURL, Err: ErrMissingTime}
	}

	return model.HeightSample{
		Height:     wire.Height,
		ObservedAt: time.Unix(*wire.Time, 0).UTC(),
	}, nil
}

// FetchPrice fetches the current BTC/USD spot price. The feed carries no
// timestamp of its own, so the sample is stamped with the local clock.
func (c *Client) FetchPrice(ctx context.Context) (model.PriceSample, error) {
	var wire spotPriceWire
	if err := c.getJSON(ctx, c.priceURL, &wire); err != nil {
		return model.PriceSample{}, err
	}

	if wire.Bitcoin.USD == nil {
		return model.PriceSample{}, &DecodeError{URL: c.priceURL, Err: ErrMissingPrice}
	}

	return model.PriceSample{
		Price:      *wire.Bitcoin.USD,
		ObservedAt: time.Now().UTC(),
	}, nil
}

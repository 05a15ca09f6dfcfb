package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/chainfeed/internal/model"
)

// fakeSources returns canned samples or errors per feed.
type fakeSources struct {
	heightSample model.HeightSample
	heightErr    error
	priceSample  model.PriceSample
	priceErr     error

	heightCalls atomic.Int32
	priceCalls  atomic.Int32
}

func (f *fakeSources) FetchHeight(ctx context.Context) (model.HeightSample, error) {
	f.heightCalls.Add(1)
	return f.heightSample, f.heightErr
}

func (f *fakeSources) FetchPrice(ctx context.Context) (model.PriceSample, error) {
	f.priceCalls.Add(1)
	return f.priceSample, f.priceErr
}

// capturingPublisher records published payloads in order.
type capturingPublisher struct {
	mu       sync.Mutex
	payloads []model.Payload
}

func (c *capturingPublisher) Publish(p model.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, p)
}

func (c *capturingPublisher) published() []model.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Payload(nil), c.payloads...)
}

// capturingRecorder records persisted samples.
type capturingRecorder struct {
	mu        sync.Mutex
	heights   []int32
	heightTs  []int64
	prices    []float64
	heightErr error
	priceErr  error
}

func (c *capturingRecorder) RecordHeight(ctx context.Context, height int32, ts int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.heightErr != nil {
		return c.heightErr
	}
	c.heights = append(c.heights, height)
	c.heightTs = append(c.heightTs, ts)
	return nil
}

func (c *capturingRecorder) RecordPrice(ctx context.Context, price float64, ts int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.priceErr != nil {
		return c.priceErr
	}
	c.prices = append(c.prices, price)
	return nil
}

func newPoller(sources *fakeSources, pub *capturingPublisher, rec *capturingRecorder) *Poller {
	cfg := Config{
		Interval:     time.Hour, // ticks triggered manually in tests
		FetchTimeout: 5 * time.Second,
	}
	return New(cfg, sources, sources, pub, rec, nil)
}

func TestPoller_Tick(t *testing.T) {
	now := time.Now().UTC()
	sources := &fakeSources{
		heightSample: model.HeightSample{Height: 820000, ObservedAt: time.Unix(1700000000, 0).UTC()},
		priceSample:  model.PriceSample{Price: 65000.5, ObservedAt: now},
	}
	pub := &capturingPublisher{}
	rec := &capturingRecorder{}

	p := newPoller(sources, pub, rec)
	p.tick()

	payloads := pub.published()
	if len(payloads) != 2 {
		t.Fatalf("published %d payloads, want 2", len(payloads))
	}

	wantHeight := model.Payload{Height: 820000, Price: 0, Timestamp: 1700000000}
	if payloads[0] != wantHeight {
		t.Errorf("height payload = %+v, want %+v", payloads[0], wantHeight)
	}

	wantPrice := model.Payload{Height: 0, Price: 65000.5, Timestamp: now.Unix()}
	if payloads[1] != wantPrice {
		t.Errorf("price payload = %+v, want %+v", payloads[1], wantPrice)
	}

	if len(rec.heights) != 1 || rec.heights[0] != 820000 {
		t.Errorf("recorded heights = %v, want [820000]", rec.heights)
	}
	if len(rec.heightTs) != 1 || rec.heightTs[0] != 1700000000 {
		t.Errorf("recorded height timestamps = %v, want [1700000000]", rec.heightTs)
	}
	if len(rec.prices) != 1 || rec.prices[0] != 65000.5 {
		t.Errorf("recorded prices = %v, want [65000.5]", rec.prices)
	}
}

func TestPoller_PriceFailureDoesNotAffectHeight(t *testing.T) {
	sources := &fakeSources{
		heightSample: model.HeightSample{Height: 820001, ObservedAt: time.Unix(1700000600, 0).UTC()},
		priceErr:     errors.New("price feed unreachable"),
	}
	pub := &capturingPublisher{}
	rec := &capturingRecorder{}

	p := newPoller(sources, pub, rec)
	p.tick()

	payloads := pub.published()
	if len(payloads) != 1 {
		t.Fatalf("published %d payloads, want 1 (height only)", len(payloads))
	}
	if payloads[0].Height != 820001 {
		t.Errorf("payload height = %d, want 820001", payloads[0].Height)
	}
	if len(rec.heights) != 1 {
		t.Errorf("recorded heights = %v, want one entry", rec.heights)
	}
	if len(rec.prices) != 0 {
		t.Errorf("recorded prices = %v, want none", rec.prices)
	}
}

func TestPoller_HeightFailureDoesNotAffectPrice(t *testing.T) {
	sources := &fakeSources{
		heightErr:   errors.New("height feed unreachable"),
		priceSample: model.PriceSample{Price: 64000, ObservedAt: time.Now().UTC()},
	}
	pub := &capturingPublisher{}
	rec := &capturingRecorder{}

	p := newPoller(sources, pub, rec)
	p.tick()

	payloads := pub.published()
	if len(payloads) != 1 {
		t.Fatalf("published %d payloads, want 1 (price only)", len(payloads))
	}
	if payloads[0].Price != 64000 {
		t.Errorf("payload price = %f, want 64000", payloads[0].Price)
	}
	if len(rec.prices) != 1 {
		t.Errorf("recorded prices = %v, want one entry", rec.prices)
	}
	if len(rec.heights) != 0 {
		t.Errorf("recorded heights = %v, want none", rec.heights)
	}
}

func TestPoller_RecordFailureStillPublishes(t *testing.T) {
	sources := &fakeSources{
		heightSample: model.HeightSample{Height: 820002, ObservedAt: time.Unix(1700001200, 0).UTC()},
		priceSample:  model.PriceSample{Price: 66000, ObservedAt: time.Now().UTC()},
	}
	pub := &capturingPublisher{}
	rec := &capturingRecorder{
		heightErr: errors.New("store down"),
		priceErr:  errors.New("store down"),
	}

	p := newPoller(sources, pub, rec)
	p.tick()

	// Persistence failure is logged, not propagated; both payloads went out.
	if got := len(pub.published()); got != 2 {
		t.Errorf("published %d payloads, want 2", got)
	}
}

func TestPoller_StartStop(t *testing.T) {
	sources := &fakeSources{
		heightSample: model.HeightSample{Height: 1, ObservedAt: time.Unix(1, 0).UTC()},
		priceSample:  model.PriceSample{Price: 1, ObservedAt: time.Unix(1, 0).UTC()},
	}
	pub := &capturingPublisher{}
	rec := &capturingRecorder{}

	cfg := Config{
		Interval:     50 * time.Millisecond,
		FetchTimeout: time.Second,
	}
	p := New(cfg, sources, sources, pub, rec, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// First tick fires immediately, then at least one more on the interval.
	time.Sleep(120 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	calls := sources.heightCalls.Load()
	if calls < 2 {
		t.Errorf("heightCalls = %d, want >= 2", calls)
	}

	// No new ticks after Stop returns.
	time.Sleep(120 * time.Millisecond)
	if got := sources.heightCalls.Load(); got != calls {
		t.Errorf("heightCalls after Stop = %d, want %d (no new ticks)", got, calls)
	}
}

func TestPoller_StopBeforeNextTick(t *testing.T) {
	sources := &fakeSources{
		heightSample: model.HeightSample{Height: 1, ObservedAt: time.Unix(1, 0).UTC()},
		priceSample:  model.PriceSample{Price: 1, ObservedAt: time.Unix(1, 0).UTC()},
	}
	p := New(Config{Interval: time.Hour, FetchTimeout: time.Second},
		sources, sources, &capturingPublisher{}, &capturingRecorder{}, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// Only the immediate startup tick ran.
	if got := sources.heightCalls.Load(); got != 1 {
		t.Errorf("heightCalls = %d, want 1", got)
	}
}

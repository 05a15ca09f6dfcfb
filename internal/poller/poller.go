package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/chainfeed/internal/metrics"
	"github.com/rickgao/chainfeed/internal/model"
)

// HeightSource fetches one height sample per call.
type HeightSource interface {
	FetchHeight(ctx context.Context) (model.HeightSample, error)
}

// PriceSource fetches one price sample per call.
type PriceSource interface {
	FetchPrice(ctx context.Context) (model.PriceSample, error)
}

// Publisher receives payloads for broadcast.
type Publisher interface {
	Publish(p model.Payload)
}

// Recorder persists samples.
type Recorder interface {
	RecordHeight(ctx context.Context, height int32, ts int64) error
	RecordPrice(ctx context.Context, price float64, ts int64) error
}

// Config holds poller configuration.
type Config struct {
	Interval     time.Duration // Poll interval (default: 60s)
	FetchTimeout time.Duration // Per-call timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:     60 * time.Second,
		FetchTimeout: 10 * time.Second,
	}
}

// Poller drives the fetch→publish→persist cycle on a fixed interval.
type Poller struct {
	cfg       Config
	heights   HeightSource
	prices    PriceSource
	publisher Publisher
	recorder  Recorder
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, heights HeightSource, prices PriceSource, publisher Publisher, recorder Recorder, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:       cfg,
		heights:   heights,
		prices:    prices,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started", "interval", p.cfg.Interval)

	return nil
}

// Stop gracefully shuts down the poller. A tick in progress is allowed to
// finish; no new tick begins.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.tick()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick runs the height and price sequences. Each is independent: an error
// in one never aborts the other, and no data error stops the loop.
func (p *Poller) tick() {
	start := time.Now()

	p.pollHeight()
	p.pollPrice()

	p.logger.Debug("tick complete", "duration", time.Since(start))
}

func (p *Poller) pollHeight() {
	// Detached from the loop context: shutdown stops the next tick but
	// lets in-flight calls run out their own timeout.
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.FetchTimeout)
	defer cancel()

	sample, err := p.heights.FetchHeight(ctx)
	if err != nil {
		p.logger.Warn("failed to fetch block height", "error", err)
		metrics.FeedErrors.WithLabelValues(metrics.FeedHeight).Inc()
		return
	}

	p.publisher.Publish(model.HeightPayload(sample))
	metrics.PayloadsPublished.WithLabelValues(metrics.FeedHeight).Inc()

	if err := p.recorder.RecordHeight(ctx, sample.Height, sample.ObservedAt.Unix()); err != nil {
		p.logger.Warn("failed to record block height",
			"height", sample.Height,
			"error", err,
		)
		metrics.StoreErrors.Inc()
	}
}

func (p *Poller) pollPrice() {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.FetchTimeout)
	defer cancel()

	sample, err := p.prices.FetchPrice(ctx)
	if err != nil {
		p.logger.Warn("failed to fetch price", "error", err)
		metrics.FeedErrors.WithLabelValues(metrics.FeedPrice).Inc()
		return
	}

	p.publisher.Publish(model.PricePayload(sample))
	metrics.PayloadsPublished.WithLabelValues(metrics.FeedPrice).Inc()

	if err := p.recorder.RecordPrice(ctx, sample.Price, sample.ObservedAt.Unix()); err != nil {
		p.logger.Warn("failed to record price",
			"price", sample.Price,
			"error", err,
		)
		metrics.StoreErrors.Inc()
	}
}

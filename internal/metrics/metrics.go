package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Feed label values.
const (
	FeedHeight = "height"
	FeedPrice  = "price"
)

var registry = prometheus.NewRegistry()

var (
	// PayloadsPublished counts payloads handed to the broadcast hub.
	PayloadsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainfeed",
		Name:      "payloads_published_total",
		Help:      "Payloads published to the broadcast hub, by feed.",
	}, []string{"feed"})

	// FeedErrors counts failed feed fetches.
	FeedErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainfeed",
		Name:      "feed_errors_total",
		Help:      "Failed feed fetches, by feed.",
	}, []string{"feed"})

	// StoreErrors counts failed record operations.
	StoreErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chainfeed",
		Name:      "store_errors_total",
		Help:      "Failed persistence operations.",
	})

	// Subscribers tracks currently attached hub subscriptions.
	Subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chainfeed",
		Name:      "subscribers",
		Help:      "Currently attached broadcast subscriptions.",
	})

	// PayloadsDropped counts payloads lost to lagging subscribers.
	PayloadsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chainfeed",
		Name:      "payloads_dropped_total",
		Help:      "Payloads dropped because a subscriber ring overflowed.",
	})
)

func init() {
	registry.MustRegister(
		PayloadsPublished,
		FeedErrors,
		StoreErrors,
		Subscribers,
		PayloadsDropped,
	)
}

// Handler serves the metrics registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

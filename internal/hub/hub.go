package hub

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rickgao/chainfeed/internal/metrics"
	"github.com/rickgao/chainfeed/internal/model"
)

// Hub fans published payloads out to all current subscriptions.
type Hub struct {
	logger   *slog.Logger
	capacity int

	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscription
	closed bool
}

// Subscription is one subscriber's receive handle. It observes every payload
// published after it was created, in publish order, minus any entries it
// lagged past.
type Subscription struct {
	id   uuid.UUID
	ring *ring
	hub  *Hub
}

// New creates a Hub whose subscriptions buffer up to capacity payloads.
func New(capacity int, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:   logger,
		capacity: capacity,
		subs:     make(map[uuid.UUID]*Subscription),
	}
}

// Publish delivers a payload to every current subscription. It never blocks:
// a subscription that cannot keep up loses its oldest undelivered entries.
// Concurrent publishers are serialized by the hub lock, so per-subscriber
// delivery order always matches publish order.
func (h *Hub) Publish(p model.Payload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for _, sub := range h.subs {
		if sub.ring.push(p) {
			metrics.PayloadsDropped.Inc()
			h.logger.Debug("subscriber lagging, dropped oldest payload",
				"subscription", sub.id,
			)
		}
	}
}

// Subscribe attaches a new subscription. It receives nothing published
// before this call.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		id:   uuid.New(),
		ring: newRing(h.capacity),
		hub:  h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.ring.close()
		return sub
	}

	h.subs[sub.id] = sub
	metrics.Subscribers.Set(float64(len(h.subs)))

	h.logger.Debug("subscription attached", "subscription", sub.id, "total", len(h.subs))
	return sub
}

// SubscriberCount returns the number of attached subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close detaches and closes all subscriptions. Further publishes are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, sub := range h.subs {
		sub.ring.close()
		delete(h.subs, id)
	}
	metrics.Subscribers.Set(0)

	h.logger.Debug("hub closed")
}

func (h *Hub) unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[id]
	if !ok {
		return
	}

	sub.ring.close()
	delete(h.subs, id)
	metrics.Subscribers.Set(float64(len(h.subs)))

	h.logger.Debug("subscription detached", "subscription", id, "total", len(h.subs))
}

// ID identifies this subscription.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Next blocks until the next payload is available or the subscription is
// closed. Returns false once closed and drained.
func (s *Subscription) Next() (model.Payload, bool) {
	return s.ring.pop()
}

// Close detaches the subscription from the hub and wakes any Next caller.
// Idempotent.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.id)
	// Covers subscriptions created after the hub closed, which were never
	// in the hub's map.
	s.ring.close()
}

// Stats returns a snapshot of this subscription's buffer counters.
func (s *Subscription) Stats() RingStats {
	return s.ring.stats()
}

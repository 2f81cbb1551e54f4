// Package relay forwards download progress to the push channel of the client
// that started the download.
package relay

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/marcopiovanello/tubedrop/server/internal"
	"github.com/marcopiovanello/tubedrop/server/metrics"
)

const progressTopic = "download_progress:"

// Relay maps connection identifiers to open push channels. It is created once
// per server and shared by every request.
//
// The event bus never forgets a topic, so topics are numbered slots reused
// after a connection goes away instead of one topic per connection id.
type Relay struct {
	bus     EventBus.Bus
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[string]*client
	slots   map[string]int
	free    []int
	next    int
}

func New(m *metrics.Metrics) *Relay {
	return &Relay{
		bus:     EventBus.New(),
		metrics: m,
		clients: make(map[string]*client),
		slots:   make(map[string]int),
	}
}

func topic(slot int) string { return progressTopic + strconv.Itoa(slot) }

func (r *Relay) acquire(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[id]; ok {
		return 0, false
	}

	var slot int
	if n := len(r.free); n > 0 {
		slot, r.free = r.free[n-1], r.free[:n-1]
	} else {
		slot = r.next
		r.next++
	}
	r.slots[id] = slot

	return slot, true
}

func (r *Relay) release(id string) {
	delete(r.slots, id)
}

// Subscribe delivers every event forwarded to id to fn until the returned
// cancel function is called. An id can have one subscriber at a time.
func (r *Relay) Subscribe(id string, fn func(internal.ProgressEvent)) (cancel func()) {
	slot, ok := r.acquire(id)
	if !ok {
		slog.Error("connection already subscribed", slog.String("id", id))
		return func() {}
	}

	t := topic(slot)
	if err := r.bus.Subscribe(t, fn); err != nil {
		slog.Error("failed to subscribe connection", slog.String("id", id), slog.Any("err", err))
		r.mu.Lock()
		r.release(id)
		r.free = append(r.free, slot)
		r.mu.Unlock()
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()

			if err := r.bus.Unsubscribe(t, fn); err != nil {
				slog.Warn("failed to unsubscribe connection", slog.String("id", id), slog.Any("err", err))
			}
			r.release(id)
			r.free = append(r.free, slot)
		})
	}
}

// Live reports whether id currently has a subscriber.
func (r *Relay) Live(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.slots[id]
	return ok
}

// Forward is fire-and-forget: events for an unknown or closed connection are
// dropped. It reports whether the event reached a subscriber.
func (r *Relay) Forward(id string, ev internal.ProgressEvent) bool {
	// held across Publish so the slot cannot be handed to another connection
	// while the event is delivered
	r.mu.RLock()
	slot, ok := r.slots[id]
	if ok && r.bus.HasCallback(topic(slot)) {
		r.bus.Publish(topic(slot), ev)
	} else {
		ok = false
	}
	r.mu.RUnlock()

	if !ok {
		r.metrics.ProgressDropped()
		return false
	}

	r.metrics.ProgressForwarded()
	return true
}

// Observer binds a progress observer to one connection. Without an id the
// observer discards everything.
func (r *Relay) Observer(id string) internal.ProgressObserver {
	if id == "" {
		return internal.NopObserver
	}
	return internal.ProgressFunc(func(ev internal.ProgressEvent) {
		r.Forward(id, ev)
	})
}

// Connections returns the number of open push channels.
func (r *Relay) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close terminates every open push channel.
func (r *Relay) Close() {
	r.mu.RLock()
	clients := make([]*client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}

func (r *Relay) add(c *client) {
	r.mu.Lock()
	r.clients[c.id] = c
	r.mu.Unlock()
	r.metrics.ConnectionOpened()
}

func (r *Relay) remove(c *client) {
	r.mu.Lock()
	delete(r.clients, c.id)
	r.mu.Unlock()
	r.metrics.ConnectionClosed()
}

// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package broadcast distributes notification strings from a courier
// receiver to any number of subscribers.
//
// A Hub stands in for the external consumer of the notification channel:
// its input drains the receiver, and its output is whatever the host wires
// to Subscribe, typically a peer-to-peer publish loop. The hub offers no
// delivery acknowledgement back to the producers.
package broadcast

import (
	"context"
	"expvar"
	"io"
	"sync"

	"github.com/creachadair/courier"
	"github.com/creachadair/taskgroup"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 16

// A Hub fans out each notification read from its receiver to all current
// subscribers. A slow subscriber does not block the hub or its peers: a note
// that does not fit in a subscriber's buffer is dropped for that subscriber
// and counted in the notes_discarded metric.
type Hub struct {
	rc *courier.Receiver

	μ    sync.Mutex
	subs map[int]chan string
	next int
}

// NewHub constructs a hub draining rc. The hub delivers nothing until its
// Run method is called.
func NewHub(rc *courier.Receiver) *Hub {
	return &Hub{rc: rc, subs: make(map[int]chan string)}
}

// Run delivers notes to subscribers until ctx ends or the receiver closes.
// It reports nil if the receiver closed, otherwise the context error.  When
// Run returns, all remaining subscriptions are cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer h.closeAll()
	for {
		select {
		case note, ok := <-h.rc.Chan():
			if !ok {
				return nil
			}
			h.publish(note)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Subscribe registers a new subscriber and returns its channel together with
// a cancel function that unregisters the subscriber and closes the channel.
// Cancelling is safe from any goroutine and more than once.
func (h *Hub) Subscribe() (<-chan string, func()) {
	ch := make(chan string, subscriberBuffer)
	h.μ.Lock()
	defer h.μ.Unlock()
	id := h.next
	h.next++
	h.subs[id] = ch
	return ch, func() { h.unsubscribe(id, ch) }
}

// NotifyWriter subscribes w to h, writing each note followed by a newline.
// The returned stop function cancels the subscription, blocks until pending
// writes complete, and reports the first write error if any occurred.
func (h *Hub) NotifyWriter(w io.Writer) (stop func() error) {
	ch, cancel := h.Subscribe()
	s := taskgroup.Go(func() error {
		for note := range ch {
			if _, err := io.WriteString(w, note+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
	return func() error { cancel(); return s.Wait() }
}

// Metrics returns a metrics map for the hub. Metrics are shared globally
// among all hubs.
func (h *Hub) Metrics() *expvar.Map { return hubMetrics.emap }

func (h *Hub) publish(note string) {
	hubMetrics.notePublished.Add(1)
	h.μ.Lock()
	defer h.μ.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- note:
		default:
			hubMetrics.noteDiscarded.Add(1)
		}
	}
}

func (h *Hub) unsubscribe(id int, ch chan string) {
	h.μ.Lock()
	defer h.μ.Unlock()
	// The presence check keeps cancellation idempotent and tolerant of a
	// concurrent closeAll.
	if _, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Hub) closeAll() {
	h.μ.Lock()
	defer h.μ.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// hubCounters record hub delivery counters.
type hubCounters struct {
	notePublished expvar.Int // notes read from the receiver
	noteDiscarded expvar.Int // per-subscriber deliveries dropped

	emap *expvar.Map
}

var hubMetrics = newHubCounters()

func newHubCounters() *hubCounters {
	hm := &hubCounters{emap: new(expvar.Map)}
	hm.emap.Set("notes_published", &hm.notePublished)
	hm.emap.Set("notes_discarded", &hm.noteDiscarded)
	return hm
}

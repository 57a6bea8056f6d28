// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package courier

import (
	"context"
	"errors"
	"sync"

	"github.com/creachadair/mds/value"
)

// DefaultSinkCapacity is the notification channel capacity used by NewSink
// when the caller does not specify a positive capacity.
const DefaultSinkCapacity = 32

// ErrSinkClosed is reported by [Sink.Send] when the consumer end of the
// notification channel has been closed.
var ErrSinkClosed = errors.New("sink is closed")

// A Sink is a producer handle on the notification channel shared between
// handlers and a single external consumer. Handles are cheap to clone, and
// independent clones may send concurrently without external locking.
type Sink struct {
	ch chan<- string
}

// A Receiver is the consumer end of the notification channel created by
// NewSink. Exactly one logical consumer should drain a receiver; the
// consumer has no way to acknowledge receipt back to the producers.
type Receiver struct {
	ch   chan string
	stop sync.Once
}

// NewSink constructs a notification channel with the given capacity and
// returns its two ends. If capacity <= 0, DefaultSinkCapacity is used.
func NewSink(capacity int) (*Sink, *Receiver) {
	ch := make(chan string, value.Cond(capacity > 0, capacity, DefaultSinkCapacity))
	return &Sink{ch: ch}, &Receiver{ch: ch}
}

// Clone returns a new independent handle sending to the same channel as s.
func (s *Sink) Clone() *Sink { return &Sink{ch: s.ch} }

// Send delivers msg to the consumer. If the channel is at capacity, Send
// blocks until space is available, ctx ends, or the receiver closes. Send
// reports ErrSinkClosed if the receiver has closed; it never panics and
// never blocks indefinitely once the consumer is gone.
func (s *Sink) Send(ctx context.Context, msg string) (err error) {
	defer func() {
		// A send on the channel panics if the receiver closed it, including
		// while we were blocked waiting for space.
		if x := recover(); x != nil {
			err = ErrSinkClosed
		}
		if err != nil {
			coreMetrics.noteFailed.Add(1)
		} else {
			coreMetrics.noteSent.Add(1)
		}
	}()
	select {
	case s.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv blocks until the next notification is available and returns it. The
// flag is false if the receiver has been closed and all buffered
// notifications have been drained.
func (r *Receiver) Recv() (string, bool) { v, ok := <-r.ch; return v, ok }

// Chan exposes the receive side of the channel, for use in select loops.
// Values read from the channel are equivalent to values reported by Recv.
func (r *Receiver) Chan() <-chan string { return r.ch }

// Close marks the consumer gone. After Close, pending and future sends on
// every clone of the sink report ErrSinkClosed; notifications already
// buffered remain readable until drained. Close is safe to call more than
// once.
func (r *Receiver) Close() { r.stop.Do(func() { close(r.ch) }) }

// Package pubsub fans published snapshots out to subscribers.
package pubsub

import (
	"context"
	"sync"
)

// Hub delivers each published value to every subscriber. Slow subscribers
// miss intermediate values rather than blocking the publisher; each channel
// always ends up holding the most recent value it was able to receive.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[chan T]struct{}
	buffer int
	closed bool
}

// NewHub creates a hub whose subscriber channels have the given buffer size
// (at least 1).
func NewHub[T any](buffer int) *Hub[T] {
	return &Hub[T]{
		subs:   make(map[chan T]struct{}),
		buffer: max(buffer, 1),
	}
}

// Subscribe returns a channel receiving every value published after the call.
// The channel is closed when ctx is done or the hub is closed.
func (h *Hub[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			h.unsubscribe(ch)
		}()
	}
	return ch
}

// Publish sends v to all subscribers without blocking.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- v:
		default:
			// Full: drop the oldest pending value so the newest gets through.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Len reports the number of active subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel. It is safe to call more than once.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
	}
	clear(h.subs)
}

func (h *Hub[T]) unsubscribe(ch chan T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

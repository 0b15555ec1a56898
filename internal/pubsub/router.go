package pubsub

import (
	"sync"

	"github.com/quietlark/ember/internal/resp"
)

// Subscriber is the writable endpoint of a connection. The connection
// worker owns the endpoint; the router only borrows it for fan-out and
// must be told (Unsubscribe / UnsubscribeAll) before the worker dies.
type Subscriber interface {
	Send(v resp.Value) error
}

// Router maps channel names to their subscriber lists
type Router struct {
	channels map[string][]Subscriber
	mu       sync.RWMutex
}

func NewRouter() *Router {
	return &Router{
		channels: make(map[string][]Subscriber),
	}
}

// Subscribe registers sub on channel. Membership is a set: a
// subscriber already on the channel is not added again.
// Reports whether sub was newly added.
func (r *Router) Subscribe(channel string, sub Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.channels[channel]
	for _, s := range subs {
		if s == sub {
			return false
		}
	}
	r.channels[channel] = append(subs, sub)
	return true
}

// Unsubscribe removes sub from channel, reporting whether it was there
func (r *Router) Unsubscribe(channel string, sub Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(channel, sub)
}

// UnsubscribeAll removes sub from every channel, returning the number
// of channels it was removed from. Called by the connection worker on
// teardown.
func (r *Router) UnsubscribeAll(sub Subscriber) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for channel := range r.channels {
		if r.removeLocked(channel, sub) {
			removed++
		}
	}
	return removed
}

func (r *Router) removeLocked(channel string, sub Subscriber) bool {
	subs := r.channels[channel]
	kept := subs[:0]
	found := false
	for _, s := range subs {
		if s == sub {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		return false
	}
	if len(kept) == 0 {
		delete(r.channels, channel)
		return true
	}
	r.channels[channel] = kept
	return true
}

// Publish writes the fan-out frame ["message", channel, payload] to
// every subscriber of channel and returns the number of successful
// deliveries. A failed write skips the subscriber; its worker notices
// the broken connection on its own.
func (r *Router) Publish(channel, payload string) int64 {
	frame := resp.MakeArray([]resp.Value{
		resp.MakeBulkString("message"),
		resp.MakeBulkString(channel),
		resp.MakeBulkString(payload),
	})

	r.mu.RLock()
	defer r.mu.RUnlock()

	var delivered int64
	for _, sub := range r.channels[channel] {
		if err := sub.Send(frame); err == nil {
			delivered++
		}
	}
	return delivered
}

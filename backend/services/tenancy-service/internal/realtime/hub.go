// Package realtime delivers notification payloads to connected clients over
// per-recipient websocket channels.
package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
)

// ErrSlowSubscriber is returned when at least one subscriber's buffer was
// full and the payload was dropped for it.
var ErrSlowSubscriber = errors.New("slow_subscriber")

// Subscription is one live listener on a channel.
type Subscription struct {
	hub     *Hub
	channel string
	send    chan []byte
	once    sync.Once
}

// C yields published payloads. It is closed when the subscription ends.
func (s *Subscription) C() <-chan []byte { return s.send }

func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub is a process-local channel registry. Channels exist only while they
// have subscribers; publishing to an empty channel is not an error.
type Hub struct {
	mu       sync.Mutex
	channels map[string]map[*Subscription]struct{}
	buffer   int
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[*Subscription]struct{}),
		buffer:   constants.RealtimeSendBuffer,
	}
}

func (h *Hub) Subscribe(channel string) *Subscription {
	sub := &Subscription{hub: h, channel: channel, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.channels[channel] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.channels[sub.channel]
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.channels, sub.channel)
	}
	close(sub.send)
}

// Publish hands payload to every subscriber of channel without blocking.
func (h *Hub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	var dropped bool
	for sub := range h.channels[channel] {
		select {
		case sub.send <- payload:
		default:
			dropped = true
		}
	}
	if dropped {
		return ErrSlowSubscriber
	}
	return nil
}

// Subscribers reports the number of live listeners on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels[channel])
}

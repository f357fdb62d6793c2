// Package presence holds the ephemeral overlay: typing indicators, message
// reactions, online status, and the pub/sub hub that fans events out to
// conversation subscribers. Nothing here is persisted; losing this state
// never corrupts the durable stores.
package presence

import "sync"

// EventType discriminates payloads on the conversation event stream.
type EventType string

const (
	EventTyping   EventType = "typing"
	EventReaction EventType = "reaction"
	EventMessage  EventType = "message"
)

type Event struct {
	Type           EventType   `json:"type"`
	ConversationID uint64      `json:"conversation_id"`
	Payload        interface{} `json:"payload"`
}

const subscriberBuffer = 16

// Hub fans events out to subscribers of a conversation. Delivery is
// best-effort: a subscriber whose buffer is full misses the event rather
// than blocking the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint64]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]map[chan Event]struct{})}
}

// Subscribe registers a listener for one conversation. The returned cancel
// func must be called exactly once; after it returns the channel is closed.
func (h *Hub) Subscribe(convID uint64) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[convID] == nil {
		h.subs[convID] = make(map[chan Event]struct{})
	}
	h.subs[convID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[convID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, convID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[ev.ConversationID] {
		select {
		case ch <- ev:
		default:
			// slow subscriber: drop rather than block
		}
	}
}

// Subscribers reports the number of active listeners on a conversation.
func (h *Hub) Subscribers(convID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[convID])
}

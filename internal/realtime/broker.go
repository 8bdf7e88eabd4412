// Package realtime fans out change events to connected clients over
// server-sent events, with Redis pub/sub carrying events between instances.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const channel = "huddle:events"

// Event is one change notification pushed to subscribers.
type Event struct {
	Topic     string          `json:"topic"`  // e.g. "chat", "todo", "calendar"
	Action    string          `json:"action"` // created | updated | deleted
	RoomID    string          `json:"roomId,omitempty"`
	ActorID   string          `json:"actorId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	EmittedAt time.Time       `json:"emittedAt"`
}

// Broker publishes events to Redis and distributes incoming events to
// local subscribers.
type Broker struct {
	client *redis.Client

	mu   sync.RWMutex
	subs map[chan Event]subFilter

	done chan struct{}
}

type subFilter struct {
	userID string
	rooms  map[string]bool // empty = all rooms visible to the user
}

// NewBroker creates a broker from an existing Redis client and starts the
// pub/sub receive loop.
func NewBroker(client *redis.Client) *Broker {
	b := &Broker{
		client: client,
		subs:   make(map[chan Event]subFilter),
		done:   make(chan struct{}),
	}
	go b.receiveLoop()
	return b
}

// Publish sends an event to all instances via Redis.
func (b *Broker) Publish(ctx context.Context, ev Event) error {
	if ev.EmittedAt.IsZero() {
		ev.EmittedAt = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscribe registers a local subscriber. Events are dropped rather than
// blocking when the subscriber channel is full. The returned cancel func
// must be called when the subscriber goes away.
func (b *Broker) Subscribe(userID string, rooms []string) (<-chan Event, func()) {
	ch := make(chan Event, 32)
	filter := subFilter{userID: userID, rooms: make(map[string]bool, len(rooms))}
	for _, r := range rooms {
		filter.rooms[r] = true
	}

	b.mu.Lock()
	b.subs[ch] = filter
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the receive loop and drops all subscribers.
func (b *Broker) Close() {
	close(b.done)
	b.mu.Lock()
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Broker) receiveLoop() {
	ctx := context.Background()
	sub := b.client.Subscribe(ctx, channel)
	defer sub.Close()

	msgs := sub.Channel()
	for {
		select {
		case <-b.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("realtime: bad event payload: %v", err)
				continue
			}
			b.dispatch(ev)
		}
	}
}

func (b *Broker) dispatch(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch, filter := range b.subs {
		if ev.RoomID != "" && len(filter.rooms) > 0 && !filter.rooms[ev.RoomID] {
			continue
		}
		select {
		case ch <- ev:
		default:
			// slow subscriber, drop
		}
	}
}

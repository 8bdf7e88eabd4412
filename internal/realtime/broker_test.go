package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupBroker(t *testing.T) (*Broker, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	b := NewBroker(client)
	t.Cleanup(func() {
		b.Close()
		client.Close()
	})
	return b, s
}

func waitForEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("subscriber channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestPublishReachesSubscriber(t *testing.T) {
	b, _ := setupBroker(t)

	ch, cancel := b.Subscribe("u_1", nil)
	defer cancel()

	// give the receive loop time to attach
	time.Sleep(50 * time.Millisecond)

	payload, _ := json.Marshal(map[string]string{"body": "hello"})
	err := b.Publish(context.Background(), Event{
		Topic:   "chat",
		Action:  "created",
		RoomID:  "p_abc",
		ActorID: "u_2",
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	ev := waitForEvent(t, ch)
	if ev.Topic != "chat" || ev.Action != "created" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.RoomID != "p_abc" {
		t.Errorf("expected room p_abc, got %q", ev.RoomID)
	}
	if ev.EmittedAt.IsZero() {
		t.Error("expected EmittedAt to be stamped")
	}
}

func TestRoomFilter(t *testing.T) {
	b, _ := setupBroker(t)

	ch, cancel := b.Subscribe("u_1", []string{"p_mine"})
	defer cancel()

	time.Sleep(50 * time.Millisecond)

	ctx := context.Background()
	if err := b.Publish(ctx, Event{Topic: "chat", Action: "created", RoomID: "p_other"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := b.Publish(ctx, Event{Topic: "chat", Action: "created", RoomID: "p_mine"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	ev := waitForEvent(t, ch)
	if ev.RoomID != "p_mine" {
		t.Errorf("filter leaked event for room %q", ev.RoomID)
	}
}

func TestRoomlessEventReachesFilteredSubscriber(t *testing.T) {
	b, _ := setupBroker(t)

	ch, cancel := b.Subscribe("u_1", []string{"p_mine"})
	defer cancel()

	time.Sleep(50 * time.Millisecond)

	// events without a room (e.g. calendar changes) go to everyone
	if err := b.Publish(context.Background(), Event{Topic: "calendar", Action: "updated"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	ev := waitForEvent(t, ch)
	if ev.Topic != "calendar" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b, _ := setupBroker(t)

	ch, cancel := b.Subscribe("u_1", nil)
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}
}

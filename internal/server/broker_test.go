package server

import (
	"encoding/json"
	"testing"

	"github.com/tunequiz/tunequiz/internal/game"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe("g1")
	defer b.Unsubscribe("g1", ch)

	other := b.Subscribe("g2")
	defer b.Unsubscribe("g2", other)

	b.Publish("g1", game.Event{Type: game.EventRoundWon, Round: 3, UserID: "u1", Points: 2})

	select {
	case data := <-ch:
		var ev game.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.Type != game.EventRoundWon || ev.Round != 3 || ev.UserID != "u1" || ev.Points != 2 {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("no event delivered")
	}

	select {
	case data := <-other:
		t.Fatalf("event leaked to another guild: %s", data)
	default:
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe("g1")
	b.Unsubscribe("g1", ch)

	b.Publish("g1", game.Event{Type: game.EventRoundStarted, Round: 1})

	select {
	case data := <-ch:
		t.Fatalf("unsubscribed channel received %s", data)
	default:
	}
}

func TestBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("g1")
	defer b.Unsubscribe("g1", ch)

	// Publish must never block, even against a saturated subscriber.
	for i := 0; i < 100; i++ {
		b.Publish("g1", game.Event{Type: game.EventAnswer, Round: 1})
	}

	if n := len(ch); n != cap(ch) {
		t.Errorf("buffered events = %d, want %d", n, cap(ch))
	}
}

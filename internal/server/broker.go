package server

import (
	"encoding/json"
	"sync"

	"github.com/tunequiz/tunequiz/internal/game"
)

// Broker is an in-process pub/sub for game events, keyed by guild ID. The
// engine publishes through the game.EventSink interface; websocket
// spectators subscribe.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the guild.
func (b *Broker) Subscribe(guildID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[guildID] == nil {
		b.subs[guildID] = make(map[chan []byte]struct{})
	}
	b.subs[guildID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the guild's subscribers.
func (b *Broker) Unsubscribe(guildID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[guildID], ch)
	if len(b.subs[guildID]) == 0 {
		delete(b.subs, guildID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the guild.
func (b *Broker) Publish(guildID string, event game.Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[guildID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

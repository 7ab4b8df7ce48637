// Package powerup tracks one-shot, per-participant round modifiers granted
// ahead of time and consumed by the next eligible round.
package powerup

import (
	"errors"
	"sync"
)

type Kind string

const (
	Freeze       Kind = "freeze"
	DoublePoints Kind = "double_points"
)

// ErrAlreadyHeld is returned when a participant tries to stack a grant on
// top of one they already hold.
var ErrAlreadyHeld = errors.New("powerup already held")

type grant struct {
	freeze       bool
	doublePoints bool
}

func (g grant) any() bool { return g.freeze || g.doublePoints }

// Ledger is the per-guild, per-participant powerup store. All state is
// volatile; a restart forfeits pending grants.
type Ledger struct {
	mu     sync.Mutex
	grants map[string]map[string]grant
}

func NewLedger() *Ledger {
	return &Ledger{grants: make(map[string]map[string]grant)}
}

// Grant gives userID one pending kind. Holding any grant blocks further
// grants until it is consumed.
func (l *Ledger) Grant(guildID, userID string, kind Kind) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.grants[guildID]
	if g == nil {
		g = make(map[string]grant)
		l.grants[guildID] = g
	}
	if g[userID].any() {
		return ErrAlreadyHeld
	}

	held := g[userID]
	switch kind {
	case Freeze:
		held.freeze = true
	case DoublePoints:
		held.doublePoints = true
	default:
		return errors.New("unknown powerup kind")
	}
	g[userID] = held
	return nil
}

// Consume atomically clears a pending grant, reporting whether one existed.
// The first call after a grant returns true; every later call returns false.
func (l *Ledger) Consume(guildID, userID string, kind Kind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.grants[guildID]
	if g == nil {
		return false
	}
	held := g[userID]
	switch kind {
	case Freeze:
		if !held.freeze {
			return false
		}
		held.freeze = false
	case DoublePoints:
		if !held.doublePoints {
			return false
		}
		held.doublePoints = false
	default:
		return false
	}
	g[userID] = held
	return true
}

// Held reports whether userID has any pending grant.
func (l *Ledger) Held(guildID, userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.grants[guildID][userID].any()
}

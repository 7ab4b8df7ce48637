package game

import (
	"sync"

	"github.com/tunequiz/tunequiz/internal/trivia"
)

// DefaultGenre is used when a guild has not picked one.
const DefaultGenre = "random"

// Registry is the process-wide map from guild id to live session, plus the
// guild's genre preference. Cross-guild operations are independent; all
// mutation of one session happens on its match goroutine or through the
// termination protocol.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	genres   map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		genres:   make(map[string]string),
	}
}

// Get returns the guild's session, or nil.
func (r *Registry) Get(guildID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[guildID]
}

// Create registers a new session for the guild, rejecting a second match
// while one exists.
func (r *Registry) Create(guildID, initiatorID string, d trivia.Difficulty) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[guildID]; exists {
		return nil, ErrMatchActive
	}
	s := newSession(guildID, initiatorID, d)
	r.sessions[guildID] = s
	return s, nil
}

// Clear removes the guild's session record, but only while it still maps
// to s. A terminated match unwinds concurrently with any successor match
// for the same guild; the identity check keeps the old match's cleanup from
// deleting the new session's record. Safe when none exists.
func (r *Registry) Clear(guildID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[guildID] == s {
		delete(r.sessions, guildID)
	}
}

// Terminate flips the guild's session to inactive/terminated in place.
// It returns the session if this call performed the transition, nil if no
// session exists or it was already terminated.
func (r *Registry) Terminate(guildID string) *Session {
	r.mu.Lock()
	s := r.sessions[guildID]
	r.mu.Unlock()

	if s == nil || !s.terminate() {
		return nil
	}
	return s
}

// Status snapshots the guild's session for status queries.
func (r *Registry) Status(guildID string) (Status, bool) {
	r.mu.Lock()
	s := r.sessions[guildID]
	r.mu.Unlock()

	if s == nil {
		return Status{}, false
	}
	return s.status(), true
}

// Genre returns the guild's preferred genre, defaulting to random.
func (r *Registry) Genre(guildID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.genres[guildID]; ok {
		return g
	}
	return DefaultGenre
}

func (r *Registry) SetGenre(guildID, genre string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.genres[guildID] = genre
}
